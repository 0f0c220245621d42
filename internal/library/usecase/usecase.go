package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/clock"
	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/idempotency"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
	"github.com/shandysiswandi/libris/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// Casbin objects and actions checked by this module.
const (
	objCatalog = "library.catalog"
	objLoan    = "library.loan"
	objComment = "library.comment"
	objRating  = "library.rating"

	actCreate   = "create"
	actRead     = "read"
	actUpdate   = "update"
	actDelete   = "delete"
	actManage   = "manage"
	actModerate = "moderate"
)

var (
	errAuthRequired = goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	errForbidden    = goerror.NewBusiness("you do not have permission to perform this action", goerror.CodeForbidden)
)

type LoanEvent struct {
	LoanID     int64
	UserID     int64
	Email      string
	FullName   string
	CopyID     int64
	BookID     int64
	BookTitle  string
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
}

type repoMessaging interface {
	PublishLoanCreated(ctx context.Context, msg LoanEvent) error
	PublishLoanReturned(ctx context.Context, msg LoanEvent) error
	PublishLoanOverdue(ctx context.Context, msg LoanEvent) error
}

type repoBlob interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type repoDB interface {
	ListAuthors(ctx context.Context, page entity.Page) (*entity.PageResult[entity.Author], error)
	GetAuthor(ctx context.Context, id int64) (*entity.Author, error)
	CreateAuthor(ctx context.Context, in entity.Author) error
	UpdateAuthor(ctx context.Context, in entity.Author) error
	DeleteAuthor(ctx context.Context, id int64) error

	ListPublishers(ctx context.Context, page entity.Page) (*entity.PageResult[entity.Publisher], error)
	GetPublisher(ctx context.Context, id int64) (*entity.Publisher, error)
	CreatePublisher(ctx context.Context, in entity.Publisher) error
	UpdatePublisher(ctx context.Context, in entity.Publisher) error
	DeletePublisher(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, page entity.Page) (*entity.PageResult[entity.Category], error)
	GetCategory(ctx context.Context, id int64) (*entity.Category, error)
	CreateCategory(ctx context.Context, in entity.Category) error
	UpdateCategory(ctx context.Context, in entity.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListBooks(ctx context.Context, page entity.Page) (*entity.PageResult[entity.Book], error)
	GetBook(ctx context.Context, id int64) (*entity.BookDetail, error)
	CreateBook(ctx context.Context, in entity.Book) error
	UpdateBook(ctx context.Context, in entity.Book) error
	DeleteBook(ctx context.Context, id int64) error

	ListCopies(ctx context.Context, bookID int64, page entity.Page) (*entity.PageResult[entity.Copy], error)
	GetCopy(ctx context.Context, id int64) (*entity.Copy, error)
	CreateCopy(ctx context.Context, in entity.Copy) error
	UpdateCopy(ctx context.Context, in entity.Copy) error
	DeleteCopy(ctx context.Context, id int64) error

	UpdateAssetURL(ctx context.Context, asset entity.Asset, id int64, url string, at time.Time) error

	CreateLoan(ctx context.Context, in entity.Loan) error
	GetLoan(ctx context.Context, id int64) (*entity.Loan, error)
	GetLoanNotice(ctx context.Context, id int64) (*entity.LoanNotice, error)
	ListLoans(ctx context.Context, filter entity.LoanFilter) (*entity.PageResult[entity.Loan], error)
	ReturnLoan(ctx context.Context, id int64, returnedAt time.Time) error
	UpdateLoan(ctx context.Context, in entity.UpdateLoan) error
	MarkOverdueLoans(ctx context.Context, now time.Time) ([]entity.LoanNotice, error)

	ListComments(ctx context.Context, bookID int64, page entity.Page) (*entity.PageResult[entity.Comment], error)
	GetComment(ctx context.Context, id int64) (*entity.Comment, error)
	CreateComment(ctx context.Context, in entity.Comment) error
	UpdateComment(ctx context.Context, in entity.Comment) error
	ModerateComment(ctx context.Context, id int64, visible bool, at time.Time) error
	DeleteComment(ctx context.Context, id int64) error

	ListRatings(ctx context.Context, bookID int64, page entity.Page) (*entity.PageResult[entity.Rating], error)
	GetRating(ctx context.Context, id int64) (*entity.Rating, error)
	CreateRating(ctx context.Context, in entity.Rating) error
	DeleteRating(ctx context.Context, id int64) error
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoBlob      repoBlob
	idempotency   idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	oid           uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	enforcer      enforcer
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RepoBlob      repoBlob
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	OID           uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Enforcer      enforcer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoBlob:      dep.RepoBlob,
		idempotency:   dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		oid:           dep.OID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("library.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, errAuthRequired
	}
	return clm, nil
}

// authorize requires a caller allowed to act on obj.
func (s *Usecase) authorize(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.enforcer.Enforce(subject(clm.UserID), obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enforce policy", "user_id", clm.UserID, "obj", obj, "act", act, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "permission denied", "user_id", clm.UserID, "obj", obj, "act", act)
		return nil, errForbidden
	}

	return clm, nil
}

// can reports whether the caller holds the permission without failing the request.
func (s *Usecase) can(ctx context.Context, userID int64, obj, act string) bool {
	ok, err := s.enforcer.Enforce(subject(userID), obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enforce policy", "user_id", userID, "obj", obj, "act", act, "error", err)
		return false
	}
	return ok
}

func subject(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// repoError turns a repository error into the error returned to the caller.
// op is the failed repository action, used for logging only.
func repoError(ctx context.Context, err error, op, what string, id int64) error {
	switch {
	case errors.Is(err, goerror.ErrNotFound):
		return goerror.NewBusiness(what+" not found", goerror.CodeNotFound)
	case errors.Is(err, goerror.ErrConflict):
		return goerror.NewBusiness(what+" already exists", goerror.CodeConflict)
	case errors.Is(err, goerror.ErrReference) && op == actDelete:
		return goerror.NewBusiness(what+" is still in use", goerror.CodeConflict)
	case errors.Is(err, goerror.ErrReference):
		return goerror.NewBusiness(what+" refers to a record that does not exist", goerror.CodeInvalidInput)
	}

	slog.ErrorContext(ctx, "failed to repo "+op+" "+what, "id", id, "error", err)
	return goerror.NewServer(err)
}
