package entity

import "time"

type Author struct {
	ID          int64
	Name        string
	Biography   string
	BirthDate   time.Time
	DeathDate   *time.Time
	Nationality string
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Publisher struct {
	ID           int64
	Name         string
	Address      string
	Website      string
	ContactEmail string
	Description  string
	LogoURL      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Category struct {
	ID          int64
	Name        string
	Description string
	Slug        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Book struct {
	ID              int64
	Title           string
	Summary         string
	PublicationDate time.Time
	ISBN            string
	Pages           int32
	Language        string
	CoverURL        string
	PublisherID     int64
	Format          string
	AuthorIDs       []int64
	CategoryIDs     []int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookDetail is a book with its rating aggregate.
type BookDetail struct {
	Book
	RatingAverage float64
	RatingCount   int64
}

type Copy struct {
	ID              int64
	BookID          int64
	Condition       string
	AcquisitionDate time.Time
	Location        string
	Available       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Asset names an uploadable image and the key prefix it is stored under.
type Asset string

const (
	AssetBookCover     Asset = "books/covers/"
	AssetAuthorPhoto   Asset = "authors/photos/"
	AssetPublisherLogo Asset = "publishers/logos/"
)

func (a Asset) String() string {
	return string(a)
}
