package inbound

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

const dateLayout = time.DateOnly

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, goerror.NewInvalidInput(nil, field, field+" must be a date formatted as YYYY-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := parseDate(field, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// PageResponse renders the items as data and the paging as meta.
type PageResponse[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}

func (p PageResponse[T]) MarshalJSON() ([]byte, error) {
	if p.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Items)
}

func (p PageResponse[T]) Meta() map[string]any {
	return map[string]any{"total": p.Total, "page": p.Page, "size": p.Size}
}

func toPage[E, T any](in *entity.PageResult[E], conv func(E) T) PageResponse[T] {
	items := make([]T, 0, len(in.Items))
	for _, e := range in.Items {
		items = append(items, conv(e))
	}
	return PageResponse[T]{Items: items, Total: in.Total, Page: in.Page.Page, Size: in.Page.Size}
}

// Created answers 201 with v as data.
type Created[T any] struct {
	v T
}

func (c Created[T]) MarshalJSON() ([]byte, error) { return json.Marshal(c.v) }

func (Created[T]) StatusCode() int { return http.StatusCreated }

type AuthorRequest struct {
	Name        string  `json:"name"`
	Biography   string  `json:"biography"`
	BirthDate   string  `json:"birth_date" example:"1920-01-02"`
	DeathDate   *string `json:"death_date,omitempty" example:"1992-04-06"`
	Nationality string  `json:"nationality"`
}

type AuthorResponse struct {
	ID          int64     `json:"id,string"`
	Name        string    `json:"name"`
	Biography   string    `json:"biography"`
	BirthDate   string    `json:"birth_date"`
	DeathDate   *string   `json:"death_date"`
	Nationality string    `json:"nationality"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAuthor(a entity.Author) AuthorResponse {
	return AuthorResponse{
		ID:          a.ID,
		Name:        a.Name,
		Biography:   a.Biography,
		BirthDate:   a.BirthDate.Format(dateLayout),
		DeathDate:   formatOptionalDate(a.DeathDate),
		Nationality: a.Nationality,
		PhotoURL:    a.PhotoURL,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type PublisherRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Website      string `json:"website"`
	ContactEmail string `json:"contact_email"`
	Description  string `json:"description"`
}

type PublisherResponse struct {
	ID           int64     `json:"id,string"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Website      string    `json:"website"`
	ContactEmail string    `json:"contact_email"`
	Description  string    `json:"description"`
	LogoURL      string    `json:"logo_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPublisher(p entity.Publisher) PublisherResponse {
	return PublisherResponse{
		ID:           p.ID,
		Name:         p.Name,
		Address:      p.Address,
		Website:      p.Website,
		ContactEmail: p.ContactEmail,
		Description:  p.Description,
		LogoURL:      p.LogoURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug" example:"science-fiction"`
}

type CategoryResponse struct {
	ID          int64     `json:"id,string"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCategory(c entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Slug:        c.Slug,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type BookRequest struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	PublicationDate string   `json:"publication_date" example:"1965-08-01"`
	ISBN            string   `json:"isbn" example:"9780441013593"`
	Pages           int32    `json:"pages"`
	Language        string   `json:"language"`
	PublisherID     int64    `json:"publisher_id,string"`
	Format          string   `json:"format"`
	AuthorIDs       []string `json:"author_ids"`
	CategoryIDs     []string `json:"category_ids"`
}

type BookResponse struct {
	ID              int64     `json:"id,string"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	PublicationDate string    `json:"publication_date"`
	ISBN            string    `json:"isbn"`
	Pages           int32     `json:"pages"`
	Language        string    `json:"language"`
	CoverURL        string    `json:"cover_url"`
	PublisherID     int64     `json:"publisher_id,string"`
	Format          string    `json:"format"`
	AuthorIDs       []string  `json:"author_ids"`
	CategoryIDs     []string  `json:"category_ids"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BookDetailResponse struct {
	BookResponse
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int64   `json:"rating_count"`
}

func idStrings(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, formatID(id))
	}
	return out
}

func toBook(b entity.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Summary:         b.Summary,
		PublicationDate: b.PublicationDate.Format(dateLayout),
		ISBN:            b.ISBN,
		Pages:           b.Pages,
		Language:        b.Language,
		CoverURL:        b.CoverURL,
		PublisherID:     b.PublisherID,
		Format:          b.Format,
		AuthorIDs:       idStrings(b.AuthorIDs),
		CategoryIDs:     idStrings(b.CategoryIDs),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type CopyRequest struct {
	BookID          int64  `json:"book_id,string"`
	Condition       string `json:"condition"`
	AcquisitionDate string `json:"acquisition_date" example:"2024-05-01"`
	Location        string `json:"location"`
}

type CopyResponse struct {
	ID              int64     `json:"id,string"`
	BookID          int64     `json:"book_id,string"`
	Condition       string    `json:"condition"`
	AcquisitionDate string    `json:"acquisition_date"`
	Location        string    `json:"location"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toCopy(c entity.Copy) CopyResponse {
	return CopyResponse{
		ID:              c.ID,
		BookID:          c.BookID,
		Condition:       c.Condition,
		AcquisitionDate: c.AcquisitionDate.Format(dateLayout),
		Location:        c.Location,
		Available:       c.Available,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type UploadResponse struct {
	URL string `json:"url"`
}

type LoanRequest struct {
	CopyID  int64     `json:"copy_id,string"`
	DueAt   time.Time `json:"due_at"`
	Remarks string    `json:"remarks"`
}

type LoanUpdateRequest struct {
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     string     `json:"status" enums:"in_progress,returned,overdue"`
	Remarks    string     `json:"remarks"`
}

type LoanResponse struct {
	ID         int64      `json:"id,string"`
	CopyID     int64      `json:"copy_id,string"`
	UserID     int64      `json:"user_id,string"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	Status     string     `json:"status"`
	Remarks    string     `json:"remarks"`
}

func toLoan(l entity.Loan) LoanResponse {
	return LoanResponse{
		ID:         l.ID,
		CopyID:     l.CopyID,
		UserID:     l.UserID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
		Status:     l.Status.String(),
		Remarks:    l.Remarks,
	}
}

type CommentRequest struct {
	Content string `json:"content"`
	Rating  int16  `json:"rating"`
}

type ModerationRequest struct {
	Visible bool `json:"visible"`
}

type CommentResponse struct {
	ID          int64     `json:"id,string"`
	BookID      int64     `json:"book_id,string"`
	UserID      int64     `json:"user_id,string"`
	Content     string    `json:"content"`
	Rating      int16     `json:"rating"`
	PublishedAt time.Time `json:"published_at"`
	Visible     bool      `json:"visible"`
	Moderated   bool      `json:"moderated"`
}

func toComment(c entity.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		BookID:      c.BookID,
		UserID:      c.UserID,
		Content:     c.Content,
		Rating:      c.Rating,
		PublishedAt: c.PublishedAt,
		Visible:     c.Visible,
		Moderated:   c.Moderated,
	}
}

type RatingRequest struct {
	Rating      int16  `json:"rating"`
	Title       string `json:"title"`
	Comment     string `json:"comment"`
	Recommended bool   `json:"recommended"`
}

type RatingResponse struct {
	ID          int64     `json:"id,string"`
	UserID      int64     `json:"user_id,string"`
	BookID      int64     `json:"book_id,string"`
	Rating      int16     `json:"rating"`
	Title       string    `json:"title"`
	Comment     string    `json:"comment"`
	Recommended bool      `json:"recommended"`
	RatedAt     time.Time `json:"rated_at"`
}

func toRating(r entity.Rating) RatingResponse {
	return RatingResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		BookID:      r.BookID,
		Rating:      r.Rating,
		Title:       r.Title,
		Comment:     r.Comment,
		Recommended: r.Recommended,
		RatedAt:     r.RatedAt,
	}
}
