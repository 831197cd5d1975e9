package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/pure_utils"
	"github.com/invoicebox/backend/repositories/dbmodels"
)

var emailSortColumns = map[models.EmailSortField]string{
	models.EmailSortSubject:  "subject",
	models.EmailSortSender:   "from_address",
	models.EmailSortReceived: "received_at",
}

func (repo *DbRepository) CreateEmail(ctx context.Context, exec Executor, newEmailId string, input models.CreateEmailInput) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	attachmentKeys := input.AttachmentKeys
	if attachmentKeys == nil {
		attachmentKeys = []string{}
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_EMAILS).
			Columns(
				"id",
				"to_address",
				"from_address",
				"subject",
				"text",
				"received_at",
				"attachment_keys",
				"is_active",
			).
			Values(
				newEmailId,
				input.To,
				input.From,
				input.Subject,
				input.Text,
				input.Date,
				attachmentKeys,
				true,
			),
	)
}

func (repo *DbRepository) GetActiveEmailById(ctx context.Context, exec Executor, toAddress, emailId string) (models.Email, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.Email{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.EmailFields...).
			From(dbmodels.TABLE_EMAILS).
			Where(squirrel.Eq{"id": emailId, "to_address": toAddress, "is_active": true}),
		dbmodels.AdaptEmail,
	)
}

// ReassociateEmails moves the active emails of an address to a new one. Inactive rows keep
// their address.
func (repo *DbRepository) ReassociateEmails(ctx context.Context, exec Executor, oldAddress, newAddress string) (int64, error) {
	if err := validateDbExecutor(exec); err != nil {
		return 0, err
	}

	return ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_EMAILS).
			Set("to_address", newAddress).
			Where(squirrel.Eq{"to_address": oldAddress, "is_active": true}),
	)
}

func (repo *DbRepository) FlagEmailsInactive(ctx context.Context, exec Executor, address string) (int64, error) {
	if err := validateDbExecutor(exec); err != nil {
		return 0, err
	}

	return ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_EMAILS).
			Set("is_active", false).
			Where(squirrel.Eq{"to_address": address, "is_active": true}),
	)
}

// ILIKE treats backslash as its escape character by default
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func emailFiltersWhere(toAddress string, filters models.EmailFilters) squirrel.And {
	where := squirrel.And{squirrel.Eq{"to_address": toAddress, "is_active": true}}
	if filters.StartDate.Valid {
		where = append(where, squirrel.GtOrEq{"received_at": filters.StartDate.Time})
	}
	if filters.EndDate.Valid {
		where = append(where, squirrel.Lt{"received_at": pure_utils.EndOfDay(filters.EndDate.Time)})
	}
	if filters.Search != "" {
		pattern := "%" + likeEscaper.Replace(filters.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"from_address": pattern},
			squirrel.ILike{"subject": pattern},
		})
	}
	return where
}

func (repo *DbRepository) ListActiveEmails(
	ctx context.Context,
	exec Executor,
	toAddress string,
	filters models.EmailFilters,
	pagination models.PaginationAndSorting[models.EmailSortField],
) ([]models.Email, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	sortColumn, ok := emailSortColumns[pagination.Sorting]
	if !ok {
		sortColumn = emailSortColumns[models.EmailSortReceived]
	}

	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.EmailFields...).
			From(dbmodels.TABLE_EMAILS).
			Where(emailFiltersWhere(toAddress, filters)).
			OrderBy(fmt.Sprintf("%s %s", sortColumn, pagination.Order), "id").
			Limit(uint64(pagination.PageSize)).
			Offset(uint64(pagination.Offset())),
		dbmodels.AdaptEmail,
	)
}

func (repo *DbRepository) CountActiveEmails(ctx context.Context, exec Executor, toAddress string, filters models.EmailFilters) (int, error) {
	if err := validateDbExecutor(exec); err != nil {
		return 0, err
	}

	return countRows(
		ctx,
		exec,
		NewQueryBuilder().
			Select("COUNT(*)").
			From(dbmodels.TABLE_EMAILS).
			Where(emailFiltersWhere(toAddress, filters)),
	)
}
