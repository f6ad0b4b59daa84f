package providers

import (
	"github.com/samber/do/v2"

	"github.com/readshelfapp/readshelf-server/internal/auth"
	"github.com/readshelfapp/readshelf-server/internal/logger"
	"github.com/readshelfapp/readshelf-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, log.Logger), nil
}

// ProvideRelationshipService provides the user-book relationship service.
func ProvideRelationshipService(i do.Injector) (*service.RelationshipService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRelationshipService(storeHandle.Store, log.Logger), nil
}
