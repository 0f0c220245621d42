package inbound

import (
	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/library/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/router"
)

// HTTPEndpoint exposes the catalogue, loan and review handlers.
type HTTPEndpoint struct {
	uc uc
}

// ListAuthors returns a page of authors.
// @Summary List authors
// @Tags Library, Catalogue
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size (max 10)" default(5)
// @Success 200 {object} router.successResponse{data=[]AuthorResponse} "Authors"
// @Router /api/v1/library/authors [get]
func (h *HTTPEndpoint) ListAuthors(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListAuthors(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return toPage(out, toAuthor), nil
}

// GetAuthor returns one author.
// @Summary Get author
// @Tags Library, Catalogue
// @Produce json
// @Param id path string true "Author ID"
// @Success 200 {object} router.successResponse{data=AuthorResponse} "Author"
// @Failure 404 {object} router.errorResponse "Not found"
// @Router /api/v1/library/authors/{id} [get]
func (h *HTTPEndpoint) GetAuthor(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.GetAuthor(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toAuthor(*out), nil
}

func authorInput(req AuthorRequest, id int64) (usecase.AuthorInput, error) {
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return usecase.AuthorInput{}, err
	}
	death, err := parseOptionalDate("death_date", req.DeathDate)
	if err != nil {
		return usecase.AuthorInput{}, err
	}

	return usecase.AuthorInput{
		ID:          id,
		Name:        req.Name,
		Biography:   req.Biography,
		BirthDate:   birth,
		DeathDate:   death,
		Nationality: req.Nationality,
	}, nil
}

// CreateAuthor adds an author.
// @Summary Create author
// @Tags Library, Catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AuthorRequest true "Author payload"
// @Success 201 {object} router.successResponse{data=AuthorResponse} "Created"
// @Failure 403 {object} router.errorResponse "Librarian only"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/library/authors [post]
func (h *HTTPEndpoint) CreateAuthor(r *router.Request) (any, error) {
	var req AuthorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in, err := authorInput(req, 0)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.CreateAuthor(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return Created[AuthorResponse]{v: toAuthor(*out)}, nil
}

// @Router /api/v1/library/authors/{id} [put]
func (h *HTTPEndpoint) UpdateAuthor(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req AuthorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in, err := authorInput(req, id)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.UpdateAuthor(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return toAuthor(*out), nil
}

// @Router /api/v1/library/authors/{id} [delete]
func (h *HTTPEndpoint) DeleteAuthor(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteAuthor(r.Context(), id)
}

func (h *HTTPEndpoint) ListPublishers(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListPublishers(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return toPage(out, toPublisher), nil
}

func (h *HTTPEndpoint) GetPublisher(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.GetPublisher(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toPublisher(*out), nil
}

func publisherInput(req PublisherRequest, id int64) usecase.PublisherInput {
	return usecase.PublisherInput{
		ID:           id,
		Name:         req.Name,
		Address:      req.Address,
		Website:      req.Website,
		ContactEmail: req.ContactEmail,
		Description:  req.Description,
	}
}

func (h *HTTPEndpoint) CreatePublisher(r *router.Request) (any, error) {
	var req PublisherRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.CreatePublisher(r.Context(), publisherInput(req, 0))
	if err != nil {
		return nil, err
	}

	return Created[PublisherResponse]{v: toPublisher(*out)}, nil
}

func (h *HTTPEndpoint) UpdatePublisher(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req PublisherRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.UpdatePublisher(r.Context(), publisherInput(req, id))
	if err != nil {
		return nil, err
	}

	return toPublisher(*out), nil
}

func (h *HTTPEndpoint) DeletePublisher(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeletePublisher(r.Context(), id)
}

func (h *HTTPEndpoint) ListCategories(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListCategories(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return toPage(out, toCategory), nil
}

func (h *HTTPEndpoint) GetCategory(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.GetCategory(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toCategory(*out), nil
}

// CreateCategory adds a category.
// @Summary Create category
// @Tags Library, Catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category payload"
// @Success 201 {object} router.successResponse{data=CategoryResponse} "Created"
// @Failure 409 {object} router.errorResponse "Slug already used"
// @Router /api/v1/library/categories [post]
func (h *HTTPEndpoint) CreateCategory(r *router.Request) (any, error) {
	var req CategoryRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.CreateCategory(r.Context(), usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
	})
	if err != nil {
		return nil, err
	}

	return Created[CategoryResponse]{v: toCategory(*out)}, nil
}

func (h *HTTPEndpoint) UpdateCategory(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req CategoryRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.UpdateCategory(r.Context(), usecase.CategoryInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
	})
	if err != nil {
		return nil, err
	}

	return toCategory(*out), nil
}

func (h *HTTPEndpoint) DeleteCategory(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteCategory(r.Context(), id)
}

// ListBooks returns a page of books.
// @Summary List books
// @Tags Library, Catalogue
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size (max 10)" default(5)
// @Success 200 {object} router.successResponse{data=[]BookResponse} "Books"
// @Router /api/v1/library/books [get]
func (h *HTTPEndpoint) ListBooks(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListBooks(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return toPage(out, toBook), nil
}

// GetBook returns a book with its rating aggregate.
// @Summary Get book
// @Tags Library, Catalogue
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} router.successResponse{data=BookDetailResponse} "Book"
// @Failure 404 {object} router.errorResponse "Not found"
// @Router /api/v1/library/books/{id} [get]
func (h *HTTPEndpoint) GetBook(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.GetBook(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return BookDetailResponse{
		BookResponse:  toBook(out.Book),
		RatingAverage: out.RatingAverage,
		RatingCount:   out.RatingCount,
	}, nil
}

func bookInput(req BookRequest, id int64) (usecase.BookInput, error) {
	published, err := parseDate("publication_date", req.PublicationDate)
	if err != nil {
		return usecase.BookInput{}, err
	}
	authorIDs, err := parseIDs("author_ids", req.AuthorIDs)
	if err != nil {
		return usecase.BookInput{}, err
	}
	categoryIDs, err := parseIDs("category_ids", req.CategoryIDs)
	if err != nil {
		return usecase.BookInput{}, err
	}

	return usecase.BookInput{
		ID:              id,
		Title:           req.Title,
		Summary:         req.Summary,
		PublicationDate: published,
		ISBN:            req.ISBN,
		Pages:           req.Pages,
		Language:        req.Language,
		PublisherID:     req.PublisherID,
		Format:          req.Format,
		AuthorIDs:       authorIDs,
		CategoryIDs:     categoryIDs,
	}, nil
}

// CreateBook adds a book.
// @Summary Create book
// @Tags Library, Catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BookRequest true "Book payload"
// @Success 201 {object} router.successResponse{data=BookResponse} "Created"
// @Failure 409 {object} router.errorResponse "ISBN already used"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/library/books [post]
func (h *HTTPEndpoint) CreateBook(r *router.Request) (any, error) {
	var req BookRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in, err := bookInput(req, 0)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.CreateBook(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return Created[BookResponse]{v: toBook(*out)}, nil
}

func (h *HTTPEndpoint) UpdateBook(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req BookRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in, err := bookInput(req, id)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.UpdateBook(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return toBook(*out), nil
}

func (h *HTTPEndpoint) DeleteBook(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteBook(r.Context(), id)
}

// ListCopies lists copies, filtered by book_id when given.
// @Summary List copies
// @Tags Library, Catalogue
// @Produce json
// @Param book_id query string false "Book ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size (max 10)" default(5)
// @Success 200 {object} router.successResponse{data=[]CopyResponse} "Copies"
// @Router /api/v1/library/copies [get]
func (h *HTTPEndpoint) ListCopies(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}
	bookID, err := r.GetQueryInt64("book_id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListCopies(r.Context(), usecase.ListCopiesInput{BookID: bookID, ListInput: in})
	if err != nil {
		return nil, err
	}

	return toPage(out, toCopy), nil
}

func (h *HTTPEndpoint) GetCopy(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.GetCopy(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toCopy(*out), nil
}

func copyInput(req CopyRequest, id int64) (usecase.CopyInput, error) {
	acquired, err := parseDate("acquisition_date", req.AcquisitionDate)
	if err != nil {
		return usecase.CopyInput{}, err
	}

	return usecase.CopyInput{
		ID:              id,
		BookID:          req.BookID,
		Condition:       req.Condition,
		AcquisitionDate: acquired,
		Location:        req.Location,
	}, nil
}

func (h *HTTPEndpoint) CreateCopy(r *router.Request) (any, error) {
	var req CopyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in, err := copyInput(req, 0)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.CreateCopy(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return Created[CopyResponse]{v: toCopy(*out)}, nil
}

func (h *HTTPEndpoint) UpdateCopy(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req CopyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in, err := copyInput(req, id)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.UpdateCopy(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return toCopy(*out), nil
}

func (h *HTTPEndpoint) DeleteCopy(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteCopy(r.Context(), id)
}

// UploadBookCover replaces the cover image of a book.
// @Summary Upload book cover
// @Description Multipart field "file", at most 2MB, jpeg or png.
// @Tags Library, Catalogue
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param file formData file true "Image"
// @Success 200 {object} router.successResponse{data=UploadResponse} "Stored"
// @Failure 422 {object} router.errorResponse "Too large or not an image"
// @Router /api/v1/library/books/{id}/cover [put]
func (h *HTTPEndpoint) UploadBookCover(r *router.Request) (any, error) {
	return h.upload(r, entity.AssetBookCover)
}

// @Router /api/v1/library/authors/{id}/photo [put]
func (h *HTTPEndpoint) UploadAuthorPhoto(r *router.Request) (any, error) {
	return h.upload(r, entity.AssetAuthorPhoto)
}

// @Router /api/v1/library/publishers/{id}/logo [put]
func (h *HTTPEndpoint) UploadPublisherLogo(r *router.Request) (any, error) {
	return h.upload(r, entity.AssetPublisherLogo)
}

func (h *HTTPEndpoint) upload(r *router.Request, asset entity.Asset) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	file, err := r.StreamSingleFile("file", usecase.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	out, err := h.uc.UploadAsset(r.Context(), usecase.UploadInput{Asset: asset, ID: id, File: file})
	if err != nil {
		return nil, err
	}

	return UploadResponse{URL: out.URL}, nil
}
