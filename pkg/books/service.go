package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/bookstore/pkg/database"
	"github.com/inkwell/bookstore/pkg/errcodes"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/inkwell/bookstore/pkg/validation"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

type RetrieveBookOptions struct {
	ID string
}

type Service struct {
	db        *bun.DB
	validator *validation.Validator
	now       func() time.Time
}

func NewService(db *bun.DB, v *validation.Validator) *Service {
	return &Service{db: db, validator: v, now: time.Now}
}

// ParseID checks that id is a well-formed book identifier.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", errcodes.InvalidID()
	}
	return parsed.String(), nil
}

func (svc *Service) isPostgres() bool {
	return svc.db.Dialect().Name() == dialect.PG
}

// ListBooks returns one page of matching books and the total number of
// matches, regardless of paging.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books)
	q = opts.apply(q, svc.isPostgres())

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	return svc.retrieveBook(ctx, svc.db, opts)
}

func (svc *Service) retrieveBook(ctx context.Context, db bun.IDB, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	err := db.
		NewSelect().
		Model(book).
		Where("b.id = ?", opts.ID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// CreateBook validates and normalizes fields, then stores a new book with a
// generated id and timestamps.
func (svc *Service) CreateBook(ctx context.Context, fields Fields) (*models.Book, error) {
	if err := svc.validator.Conform(ctx, &fields); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := Validate(svc.validator, &fields); err != nil {
		return nil, err
	}
	fields = Normalize(fields)

	now := svc.timestamp()
	book := &models.Book{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.apply(book)

	_, err := svc.db.
		NewInsert().
		Model(book).
		Exec(ctx)
	if err != nil {
		return nil, svc.writeError(err)
	}

	return book, nil
}

// UpdateBook applies the fields present in patch, then re-validates and
// re-normalizes the whole record before writing it. updatedAt always moves,
// even for an empty patch.
func (svc *Service) UpdateBook(ctx context.Context, id string, patch Fields) (*models.Book, error) {
	if err := svc.validator.Conform(ctx, &patch); err != nil {
		return nil, errors.WithStack(err)
	}

	var book *models.Book
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		book, err = svc.retrieveBook(ctx, tx, RetrieveBookOptions{ID: id})
		if err != nil {
			return err
		}

		fields := Merge(FieldsFromBook(book), patch)
		if err := Validate(svc.validator, &fields); err != nil {
			return err
		}
		Normalize(fields).apply(book)
		book.UpdatedAt = svc.timestamp()

		_, err = tx.
			NewUpdate().
			Model(book).
			ExcludeColumn("id", "created_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return svc.writeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return book, nil
}

// DeleteBook removes the book and returns its id.
func (svc *Service) DeleteBook(ctx context.Context, id string) (string, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", errors.WithStack(err)
	}
	if n == 0 {
		return "", errcodes.NotFound("Book")
	}
	return id, nil
}

// DeleteAllBooks wipes the collection.
func (svc *Service) DeleteAllBooks(ctx context.Context) (int, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	return int(n), errors.WithStack(err)
}

// timestamp is now in UTC at the precision every backend round-trips.
func (svc *Service) timestamp() time.Time {
	return svc.now().UTC().Truncate(time.Millisecond)
}

func (svc *Service) writeError(err error) error {
	if database.IsUniqueViolation(err) {
		return errcodes.Duplicate("isbn")
	}
	return errors.WithStack(err)
}
