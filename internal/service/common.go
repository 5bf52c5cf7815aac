package service

import (
	"errors"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/storage"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// notFound turns a repository miss into a 404 naming the resource.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(KindNotFound, what+" not found", err)
	}
	return err
}

// uploadError classifies storage failures.  Rejected media types are the
// client's fault; everything else is internal.
func uploadError(err error) error {
	var mt *storage.MediaTypeError
	if errors.As(err, &mt) {
		return newError(KindBadRequest, mt.Error(), err)
	}
	return err
}

// canModify reports whether actor may change a record owned by authorID.
func canModify(actor utils.Payload, authorID uint) bool {
	return actor.UserID == authorID || actor.Role == string(model.RoleAdmin)
}

type pager struct{ maxLimit int }

func (p pager) page(page, limit int) repository.Page {
	return repository.NewPage(page, limit, p.maxLimit)
}
