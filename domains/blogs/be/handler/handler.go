package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/blogs/be/service"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const blogsBasePath = "/api/v1/blogs"

const (
	listOperation      = "listBlogs"
	getOperation       = "getBlog"
	getBySlugOperation = "getBlogBySlug"
	createOperation    = "createBlog"
	updateOperation    = "updateBlog"
	deleteOperation    = "deleteBlog"
)

// Handler wires the blogs service to HTTP.
type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("blogs service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("blogs", logger)}
}

func (h *Handler) Routes(public, admin chi.Router) {
	public.Get("/blogs", h.List)
	public.Get("/blogs/slug/{slug}", h.GetBySlug)
	public.Get("/blogs/{blogId}", h.Get)

	admin.Post("/blogs", h.Create)
	admin.Patch("/blogs/{blogId}", h.Update)
	admin.Delete("/blogs/{blogId}", h.Delete)
}

type createRequest struct {
	Title           string     `json:"title"`
	Slug            *string    `json:"slug,omitempty"`
	Excerpt         *string    `json:"excerpt,omitempty"`
	Content         string     `json:"content"`
	ContentFormat   *string    `json:"contentFormat,omitempty"`
	CoverImage      *string    `json:"coverImage,omitempty"`
	Author          *string    `json:"author,omitempty"`
	CategoryID      *uuid.UUID `json:"categoryId,omitempty"`
	SubcategoryID   *uuid.UUID `json:"subcategoryId,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	IsPublished     *bool      `json:"isPublished,omitempty"`
	MetaTitle       *string    `json:"metaTitle,omitempty"`
	MetaDescription *string    `json:"metaDescription,omitempty"`
}

type updateRequest struct {
	Title           *string    `json:"title,omitempty"`
	Slug            *string    `json:"slug,omitempty"`
	Excerpt         *string    `json:"excerpt,omitempty"`
	Content         *string    `json:"content,omitempty"`
	ContentFormat   *string    `json:"contentFormat,omitempty"`
	CoverImage      *string    `json:"coverImage,omitempty"`
	Author          *string    `json:"author,omitempty"`
	CategoryID      *uuid.UUID `json:"categoryId,omitempty"`
	SubcategoryID   *uuid.UUID `json:"subcategoryId,omitempty"`
	Tags            *[]string  `json:"tags,omitempty"`
	IsPublished     *bool      `json:"isPublished,omitempty"`
	MetaTitle       *string    `json:"metaTitle,omitempty"`
	MetaDescription *string    `json:"metaDescription,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		filter service.ListFilter
		tag    string
		search string
	)
	err := httpx.BindQueries(r, map[string]any{
		"page":          &filter.Page,
		"pageSize":      &filter.PageSize,
		"tag":           &tag,
		"search":        &search,
		"includeDrafts": &filter.IncludeDrafts,
	})
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	if tag != "" {
		filter.Tag = &tag
	}
	if search != "" {
		filter.Search = &search
	}
	if filter.CategoryID, err = httpx.OptionalUUIDQuery(r, "categoryId"); err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	if filter.SubcategoryID, err = httpx.OptionalUUIDQuery(r, "subcategoryId"); err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}

	result, err := h.svc.List(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), filter)
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "blogId")
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}

	blog, err := h.svc.Get(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id)
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blog)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	blog, err := h.svc.GetBySlug(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		h.resp.Error(w, r, err, getBySlugOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blog)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	blog, err := h.svc.Create(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), service.CreateInput{
		Title:           body.Title,
		Slug:            body.Slug,
		Excerpt:         body.Excerpt,
		Content:         body.Content,
		ContentFormat:   body.ContentFormat,
		CoverImage:      body.CoverImage,
		Author:          body.Author,
		CategoryID:      body.CategoryID,
		SubcategoryID:   body.SubcategoryID,
		Tags:            body.Tags,
		IsPublished:     body.IsPublished,
		MetaTitle:       body.MetaTitle,
		MetaDescription: body.MetaDescription,
	})
	if err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", blogsBasePath, blog.ID))
	httpx.WriteJSON(w, http.StatusCreated, blog)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "blogId")
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	var body updateRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	blog, err := h.svc.Update(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id, service.UpdateInput{
		Title:           body.Title,
		Slug:            body.Slug,
		Excerpt:         body.Excerpt,
		Content:         body.Content,
		ContentFormat:   body.ContentFormat,
		CoverImage:      body.CoverImage,
		Author:          body.Author,
		CategoryID:      body.CategoryID,
		SubcategoryID:   body.SubcategoryID,
		Tags:            body.Tags,
		IsPublished:     body.IsPublished,
		MetaTitle:       body.MetaTitle,
		MetaDescription: body.MetaDescription,
	})
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blog)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "blogId")
	if err != nil {
		h.resp.Error(w, r, err, deleteOperation)
		return
	}

	if err := h.svc.Delete(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id); err != nil {
		h.resp.Error(w, r, err, deleteOperation)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
