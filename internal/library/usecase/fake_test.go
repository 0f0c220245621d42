package usecase

import (
	"context"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/clock"
	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/idempotency"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/pgxcasbin"
	"github.com/shandysiswandi/libris/internal/pkg/validator"
)

const (
	memberID    int64 = 100
	otherID     int64 = 101
	librarianID int64 = 200
)

// fakeRepo keeps only what the tests exercise: catalogue rows in maps and
// loan side effects on copies.
type fakeRepo struct {
	mu         sync.Mutex
	authors    map[int64]entity.Author
	publishers map[int64]entity.Publisher
	categories map[int64]entity.Category
	books      map[int64]entity.Book
	copies     map[int64]entity.Copy
	loans      map[int64]entity.Loan
	comments   map[int64]entity.Comment
	ratings    map[int64]entity.Rating
	assets     map[entity.Asset]map[int64]string

	createLoanCalls int
	lastPage        entity.Page
	lastLoanFilter  entity.LoanFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		authors:    map[int64]entity.Author{},
		publishers: map[int64]entity.Publisher{},
		categories: map[int64]entity.Category{},
		books:      map[int64]entity.Book{},
		copies:     map[int64]entity.Copy{},
		loans:      map[int64]entity.Loan{},
		comments:   map[int64]entity.Comment{},
		ratings:    map[int64]entity.Rating{},
		assets:     map[entity.Asset]map[int64]string{},
	}
}

func get[T any](m map[int64]T, id int64) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &v, nil
}

func del[T any](m map[int64]T, id int64) error {
	if _, ok := m[id]; !ok {
		return goerror.ErrNotFound
	}
	delete(m, id)
	return nil
}

func page[T any](items []T, p entity.Page) *entity.PageResult[T] {
	total := int64(len(items))
	start := min(p.Offset(), len(items))
	end := min(start+p.Size, len(items))
	return &entity.PageResult[T]{Items: items[start:end], Total: total, Page: p}
}

func (f *fakeRepo) ListAuthors(_ context.Context, p entity.Page) (*entity.PageResult[entity.Author], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPage = p
	items := make([]entity.Author, 0, len(f.authors))
	for _, a := range f.authors {
		items = append(items, a)
	}
	slices.SortFunc(items, func(a, b entity.Author) int { return int(a.ID - b.ID) })
	return page(items, p), nil
}

func (f *fakeRepo) GetAuthor(_ context.Context, id int64) (*entity.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.authors, id)
}

func (f *fakeRepo) CreateAuthor(_ context.Context, in entity.Author) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authors[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdateAuthor(_ context.Context, in entity.Author) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authors[in.ID] = in
	return nil
}

func (f *fakeRepo) DeleteAuthor(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.books {
		if slices.Contains(b.AuthorIDs, id) {
			return goerror.ErrReference
		}
	}
	return del(f.authors, id)
}

func (f *fakeRepo) ListPublishers(_ context.Context, p entity.Page) (*entity.PageResult[entity.Publisher], error) {
	return page([]entity.Publisher{}, p), nil
}

func (f *fakeRepo) GetPublisher(_ context.Context, id int64) (*entity.Publisher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.publishers, id)
}

func (f *fakeRepo) CreatePublisher(_ context.Context, in entity.Publisher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishers[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdatePublisher(_ context.Context, in entity.Publisher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishers[in.ID] = in
	return nil
}

func (f *fakeRepo) DeletePublisher(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return del(f.publishers, id)
}

func (f *fakeRepo) ListCategories(_ context.Context, p entity.Page) (*entity.PageResult[entity.Category], error) {
	return page([]entity.Category{}, p), nil
}

func (f *fakeRepo) GetCategory(_ context.Context, id int64) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.categories, id)
}

func (f *fakeRepo) CreateCategory(_ context.Context, in entity.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Slug == in.Slug {
			return goerror.ErrConflict
		}
	}
	f.categories[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdateCategory(_ context.Context, in entity.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories[in.ID] = in
	return nil
}

func (f *fakeRepo) DeleteCategory(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return del(f.categories, id)
}

func (f *fakeRepo) ListBooks(_ context.Context, p entity.Page) (*entity.PageResult[entity.Book], error) {
	return page([]entity.Book{}, p), nil
}

func (f *fakeRepo) GetBook(_ context.Context, id int64) (*entity.BookDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := get(f.books, id)
	if err != nil {
		return nil, err
	}
	d := &entity.BookDetail{Book: *b}
	var sum int64
	for _, r := range f.ratings {
		if r.BookID == id {
			sum += int64(r.Rating)
			d.RatingCount++
		}
	}
	if d.RatingCount > 0 {
		d.RatingAverage = float64(sum) / float64(d.RatingCount)
	}
	return d, nil
}

func (f *fakeRepo) CreateBook(_ context.Context, in entity.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.publishers[in.PublisherID]; !ok {
		return goerror.ErrReference
	}
	for _, b := range f.books {
		if b.ISBN == in.ISBN {
			return goerror.ErrConflict
		}
	}
	f.books[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdateBook(_ context.Context, in entity.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[in.ID] = in
	return nil
}

func (f *fakeRepo) DeleteBook(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return del(f.books, id)
}

func (f *fakeRepo) ListCopies(_ context.Context, _ int64, p entity.Page) (*entity.PageResult[entity.Copy], error) {
	return page([]entity.Copy{}, p), nil
}

func (f *fakeRepo) GetCopy(_ context.Context, id int64) (*entity.Copy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.copies, id)
}

func (f *fakeRepo) CreateCopy(_ context.Context, in entity.Copy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[in.BookID]; !ok {
		return goerror.ErrReference
	}
	f.copies[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdateCopy(_ context.Context, in entity.Copy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copies[in.ID] = in
	return nil
}

func (f *fakeRepo) DeleteCopy(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return del(f.copies, id)
}

func (f *fakeRepo) UpdateAssetURL(_ context.Context, asset entity.Asset, id int64, url string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assets[asset] == nil {
		f.assets[asset] = map[int64]string{}
	}
	f.assets[asset][id] = url
	return nil
}

func (f *fakeRepo) CreateLoan(_ context.Context, in entity.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createLoanCalls++
	c, ok := f.copies[in.CopyID]
	if !ok {
		return goerror.ErrNotFound
	}
	if !c.Available {
		return goerror.ErrConflict
	}
	c.Available = false
	f.copies[c.ID] = c
	f.loans[in.ID] = in
	return nil
}

func (f *fakeRepo) GetLoan(_ context.Context, id int64) (*entity.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.loans, id)
}

func (f *fakeRepo) GetLoanNotice(_ context.Context, id int64) (*entity.LoanNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, err := get(f.loans, id)
	if err != nil {
		return nil, err
	}
	c := f.copies[l.CopyID]
	return &entity.LoanNotice{Loan: *l, Email: "reader@example.com", FullName: "Reader", BookID: c.BookID, BookTitle: f.books[c.BookID].Title}, nil
}

func (f *fakeRepo) ListLoans(_ context.Context, filter entity.LoanFilter) (*entity.PageResult[entity.Loan], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLoanFilter = filter
	var items []entity.Loan
	for _, l := range f.loans {
		if filter.UserID == 0 || l.UserID == filter.UserID {
			items = append(items, l)
		}
	}
	return page(items, filter.Page), nil
}

func (f *fakeRepo) ReturnLoan(_ context.Context, id int64, returnedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.loans[id]
	if !ok || l.Status == entity.LoanStatusReturned {
		return goerror.ErrConflict
	}
	l.Status = entity.LoanStatusReturned
	l.ReturnedAt = &returnedAt
	f.loans[id] = l
	c := f.copies[l.CopyID]
	c.Available = true
	f.copies[c.ID] = c
	return nil
}

func (f *fakeRepo) UpdateLoan(_ context.Context, in entity.UpdateLoan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.loans[in.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if l.Status != entity.LoanStatusReturned && in.Status == entity.LoanStatusReturned {
		c := f.copies[l.CopyID]
		c.Available = true
		f.copies[c.ID] = c
	}
	l.DueAt, l.ReturnedAt, l.Status, l.Remarks, l.UpdatedAt = in.DueAt, in.ReturnedAt, in.Status, in.Remarks, in.UpdatedAt
	f.loans[in.ID] = l
	return nil
}

func (f *fakeRepo) MarkOverdueLoans(_ context.Context, now time.Time) ([]entity.LoanNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.LoanNotice
	for id, l := range f.loans {
		if l.Status == entity.LoanStatusInProgress && l.DueAt.Before(now) {
			l.Status = entity.LoanStatusOverdue
			f.loans[id] = l
			out = append(out, entity.LoanNotice{Loan: l})
		}
	}
	return out, nil
}

func (f *fakeRepo) ListComments(_ context.Context, bookID int64, p entity.Page) (*entity.PageResult[entity.Comment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []entity.Comment
	for _, c := range f.comments {
		if c.BookID == bookID && c.Visible {
			items = append(items, c)
		}
	}
	return page(items, p), nil
}

func (f *fakeRepo) GetComment(_ context.Context, id int64) (*entity.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.comments, id)
}

func (f *fakeRepo) CreateComment(_ context.Context, in entity.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[in.BookID]; !ok {
		return goerror.ErrReference
	}
	f.comments[in.ID] = in
	return nil
}

func (f *fakeRepo) UpdateComment(_ context.Context, in entity.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[in.ID] = in
	return nil
}

func (f *fakeRepo) ModerateComment(_ context.Context, id int64, visible bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return goerror.ErrNotFound
	}
	c.Visible, c.Moderated, c.UpdatedAt = visible, true, at
	f.comments[id] = c
	return nil
}

func (f *fakeRepo) DeleteComment(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return del(f.comments, id)
}

func (f *fakeRepo) ListRatings(_ context.Context, _ int64, p entity.Page) (*entity.PageResult[entity.Rating], error) {
	return page([]entity.Rating{}, p), nil
}

func (f *fakeRepo) GetRating(_ context.Context, id int64) (*entity.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.ratings, id)
}

func (f *fakeRepo) CreateRating(_ context.Context, in entity.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.ratings {
		if r.UserID == in.UserID && r.BookID == in.BookID {
			return goerror.ErrConflict
		}
	}
	f.ratings[in.ID] = in
	return nil
}

func (f *fakeRepo) DeleteRating(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return del(f.ratings, id)
}

type fakeMessaging struct {
	mu       sync.Mutex
	created  []LoanEvent
	returned []LoanEvent
	overdue  []LoanEvent
}

func (f *fakeMessaging) PublishLoanCreated(_ context.Context, msg LoanEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeMessaging) PublishLoanReturned(_ context.Context, msg LoanEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.returned = append(f.returned, msg)
	return nil
}

func (f *fakeMessaging) PublishLoanOverdue(_ context.Context, msg LoanEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overdue = append(f.overdue, msg)
	return nil
}

type fakeBlob struct {
	keys  []string
	types []string
}

func (f *fakeBlob) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	f.types = append(f.types, contentType)
	return "https://cdn.example.com/" + key, nil
}

// fakeIdempotency mirrors the Redis tracker: the first successful result per
// key is remembered and replayed with ErrAlreadyCompleted.
type fakeIdempotency struct {
	mu   sync.Mutex
	done map[string]string
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) (string, error), _ ...idempotency.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.done[key]; ok {
		return v, idempotency.ErrAlreadyCompleted
	}
	v, err := fn(ctx)
	if err != nil {
		return "", err
	}
	f.done[key] = v
	return v, nil
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return 1000 + s.n
}

type fixedOID struct{}

func (fixedOID) Generate() string { return "obj" }

type fixture struct {
	uc        *Usecase
	repo      *fakeRepo
	messaging *fakeMessaging
	blob      *fakeBlob
	clock     *clock.Manual
}

// newEnforcer builds a casbin enforcer on the production model with the
// seeded role policies.
func newEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	m, err := model.NewModelFromString(pgxcasbin.RBACModel)
	require.NoError(t, err)
	e, err := casbin.NewEnforcer(m)
	require.NoError(t, err)

	_, err = e.AddPolicies([][]string{
		{"member", objLoan, actCreate},
		{"member", objLoan, actRead},
		{"member", objComment, actCreate},
		{"member", objRating, actCreate},
		{"librarian", objCatalog, "*"},
		{"librarian", objLoan, "*"},
		{"librarian", objComment, actModerate},
	})
	require.NoError(t, err)
	_, err = e.AddGroupingPolicies([][]string{
		{"librarian", "member"},
		{subject(memberID), "member"},
		{subject(otherID), "member"},
		{subject(librarianID), "librarian"},
	})
	require.NoError(t, err)

	return e
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  library:\n    overdue:\n      interval_minutes: 5\n"))
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := &fixture{
		repo:      newFakeRepo(),
		messaging: &fakeMessaging{},
		blob:      &fakeBlob{},
		clock:     clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	}
	f.uc = New(Dependency{
		RepoDB:        f.repo,
		RepoMessaging: f.messaging,
		RepoBlob:      f.blob,
		Idempotency:   &fakeIdempotency{done: map[string]string{}},
		Validator:     v,
		Config:        cfg,
		UID:           &seqID{},
		OID:           fixedOID{},
		Clock:         f.clock,
		Instrument:    instrument.NewNoop(),
		Enforcer:      newEnforcer(t),
	})

	return f
}

func as(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

// seedCatalog stores a publisher, a book and one available copy.
func (f *fixture) seedCatalog() (bookID, copyID int64) {
	f.repo.publishers[1] = entity.Publisher{ID: 1, Name: "Ace"}
	f.repo.books[10] = entity.Book{ID: 10, Title: "Dune", PublisherID: 1, ISBN: "9780441013593"}
	f.repo.copies[20] = entity.Copy{ID: 20, BookID: 10, Available: true}
	return 10, 20
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code(), gerr.Msg())
}
