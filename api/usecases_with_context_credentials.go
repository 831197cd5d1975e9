package api

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

// usecasesWithCreds is only called behind the authentication middleware, missing credentials
// mean a route was mounted outside of it
func usecasesWithCreds(ctx context.Context, uc usecases.Usecases) *usecases.UsecasesWithCreds {
	creds, ok := utils.CredentialsFromCtx(ctx)
	if !ok {
		panic(errors.AssertionFailedf("authenticated route served without credentials"))
	}
	return uc.WithCredentials(creds)
}
