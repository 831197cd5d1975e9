package emails

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/utils"
)

// raw mails above this size are refused
const maxInboundMailSize = 25 << 20

type InboundMailRepository interface {
	GetWorkspaceByEmail(ctx context.Context, exec repositories.Executor, email string) (*models.Workspace, error)
	CreateEmail(ctx context.Context, exec repositories.Executor, newEmailId string, input models.CreateEmailInput) error
}

type tokenRedeemer interface {
	Redeem(ctx context.Context, purpose models.TokenPurpose, token string) (models.TokenPayload, error)
}

// InboundMailUsecase stores the mails that the relay drops in the inbound bucket
type InboundMailUsecase struct {
	executorFactory executor_factory.ExecutorFactory
	repository      InboundMailRepository
	blobRepository  repositories.BlobRepository
	tokens          tokenRedeemer
	config          models.InboundMailConfiguration
}

func NewInboundMailUsecase(
	executorFactory executor_factory.ExecutorFactory,
	repository InboundMailRepository,
	blobRepository repositories.BlobRepository,
	tokens tokenRedeemer,
	config models.InboundMailConfiguration,
) InboundMailUsecase {
	return InboundMailUsecase{
		executorFactory: executorFactory,
		repository:      repository,
		blobRepository:  blobRepository,
		tokens:          tokens,
		config:          config,
	}
}

// AttachmentKey is where an attachment is stored in the attachments bucket
func AttachmentKey(workspaceEmail, messageKey, fileName string) string {
	return fmt.Sprintf("emails/%s/%s/%s", models.WorkspaceEmailLocalPart(workspaceEmail), messageKey, fileName)
}

// IngestInboundMail stores the mail found at objectKey in the inbound bucket. Mails to an
// address no workspace owns are dropped. The raw object is deleted once handled.
func (usecase InboundMailUsecase) IngestInboundMail(ctx context.Context, token, objectKey string) error {
	logger := utils.LoggerFromContext(ctx).With("object_key", objectKey)

	payload, err := usecase.tokens.Redeem(ctx, models.TokenPurposeInboundMail, token)
	if err != nil {
		return err
	}
	if payload.Subject != models.INBOUND_MAIL_TOKEN_SUBJECT {
		return errors.Wrap(models.ErrInvalidToken, "token was not issued to the mail relay")
	}
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return models.FieldValidationError{"object_key": "must not be empty"}
	}

	raw, err := usecase.blobRepository.GetBlob(ctx, usecase.config.InboundBucketUrl, objectKey)
	if err != nil {
		return err
	}
	content, err := readAllLimited(raw.ReadCloser, maxInboundMailSize)
	raw.ReadCloser.Close()
	if err != nil {
		utils.MetricInboundMails.WithLabelValues("invalid").Inc()
		return err
	}

	parsed, err := ParseInboundMail(bytes.NewReader(content), usecase.config.MailDomain)
	if err != nil {
		utils.MetricInboundMails.WithLabelValues("invalid").Inc()
		return err
	}

	exec := usecase.executorFactory.NewExecutor()
	workspace, err := usecase.repository.GetWorkspaceByEmail(ctx, exec, parsed.To)
	if err != nil {
		return err
	}
	if workspace == nil {
		logger.WarnContext(ctx, "inbound mail dropped, no workspace owns the address", "to", parsed.To)
		utils.MetricInboundMails.WithLabelValues("dropped").Inc()
		return usecase.deleteRawMail(ctx, objectKey)
	}

	messageKey := path.Base(objectKey)
	keys := make([]string, 0, len(parsed.Attachments))
	for _, attachment := range parsed.Attachments {
		key := AttachmentKey(workspace.Email, messageKey, attachment.FileName)
		if err := usecase.storeAttachment(ctx, key, attachment); err != nil {
			return err
		}
		keys = append(keys, key)
	}

	err = usecase.repository.CreateEmail(ctx, exec, uuid.NewString(), models.CreateEmailInput{
		To:             workspace.Email,
		From:           parsed.From,
		Subject:        parsed.Subject,
		Text:           parsed.Text,
		Date:           parsed.Date,
		AttachmentKeys: keys,
	})
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "inbound mail stored", "workspace_id", workspace.Id, "attachments", len(keys))
	utils.MetricInboundMails.WithLabelValues("stored").Inc()
	return usecase.deleteRawMail(ctx, objectKey)
}

func (usecase InboundMailUsecase) storeAttachment(ctx context.Context, key string, attachment models.InboundAttachment) error {
	writer, err := usecase.blobRepository.OpenStream(ctx, usecase.config.AttachmentsBucketUrl, key, attachment.ContentType)
	if err != nil {
		return err
	}
	if _, err := writer.Write(attachment.Content); err != nil {
		writer.Close()
		return errors.Wrapf(err, "could not write attachment %s", key)
	}
	return errors.Wrapf(writer.Close(), "could not store attachment %s", key)
}

func (usecase InboundMailUsecase) deleteRawMail(ctx context.Context, objectKey string) error {
	if err := usecase.blobRepository.DeleteFile(ctx, usecase.config.InboundBucketUrl, objectKey); err != nil {
		return errors.Wrapf(err, "could not delete inbound mail %s", objectKey)
	}
	return nil
}
