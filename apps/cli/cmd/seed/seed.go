// Package seed loads starter content from a YAML file through the domain services, so
// seeded records get the same validation, sanitising and slug handling as API writes.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	categoriesservice "github.com/carecrest/hospital-cms/domains/categories/be/service"
	doctorsservice "github.com/carecrest/hospital-cms/domains/doctors/be/service"
	heroservice "github.com/carecrest/hospital-cms/domains/hero/be/service"
	subcategoriesservice "github.com/carecrest/hospital-cms/domains/subcategories/be/service"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

// File is the seed document.
type File struct {
	Categories []Category `yaml:"categories"`
	Doctors    []Doctor   `yaml:"doctors"`
	Hero       []Hero     `yaml:"hero"`
}

type Category struct {
	Name          string        `yaml:"name"`
	Slug          string        `yaml:"slug"`
	Description   string        `yaml:"description"`
	Icon          string        `yaml:"icon"`
	SortOrder     *int          `yaml:"sortOrder"`
	IsActive      *bool         `yaml:"isActive"`
	Subcategories []Subcategory `yaml:"subcategories"`
}

type Subcategory struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	SortOrder   *int   `yaml:"sortOrder"`
	IsActive    *bool  `yaml:"isActive"`
}

// Doctor references its category by slug.
type Doctor struct {
	Name            string         `yaml:"name"`
	Slug            string         `yaml:"slug"`
	Designation     string         `yaml:"designation"`
	Specialization  string         `yaml:"specialization"`
	Qualifications  string         `yaml:"qualifications"`
	ExperienceYears *int           `yaml:"experienceYears"`
	Bio             string         `yaml:"bio"`
	Image           string         `yaml:"image"`
	Email           string         `yaml:"email"`
	Phone           string         `yaml:"phone"`
	Category        string         `yaml:"category"`
	Availability    map[string]any `yaml:"availability"`
	SortOrder       *int           `yaml:"sortOrder"`
	IsActive        *bool          `yaml:"isActive"`
}

type Hero struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	CTAText     string `yaml:"ctaText"`
	CTALink     string `yaml:"ctaLink"`
	SortOrder   *int   `yaml:"sortOrder"`
	IsActive    *bool  `yaml:"isActive"`
}

// Decode parses a seed document. Unknown keys are rejected so typos do not silently drop data.
func Decode(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, errors.New("seed file is empty")
		}
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

type categoryService interface {
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, slug string) (categoriesservice.Category, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input categoriesservice.CreateInput) (categoriesservice.Category, error)
}

type subcategoryService interface {
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, slug string) (subcategoriesservice.Subcategory, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input subcategoriesservice.CreateInput) (subcategoriesservice.Subcategory, error)
}

type doctorService interface {
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, slug string) (doctorsservice.Doctor, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input doctorsservice.CreateInput) (doctorsservice.Doctor, error)
}

type heroService interface {
	List(ctx context.Context, audit requesttrace.AuditInfo, includeInactive bool) ([]heroservice.Hero, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input heroservice.CreateInput) (heroservice.Hero, error)
}

// Services are the writers a seed run goes through.
type Services struct {
	Categories    categoryService
	Subcategories subcategoryService
	Doctors       doctorService
	Hero          heroService
}

// Stats counts what a run created and what already existed.
type Stats struct {
	Created int
	Skipped int
}

// Apply writes f through svcs. Records whose slug already exists are skipped, so a seed
// file can be applied repeatedly. Hero slides are only seeded into an empty carousel.
func Apply(ctx context.Context, svcs Services, audit requesttrace.AuditInfo, f File, log io.Writer) (Stats, error) {
	var stats Stats
	categoryIDs := map[string]uuid.UUID{}

	for _, c := range f.Categories {
		key := lookupSlug(c.Slug, c.Name)
		category, err := svcs.Categories.GetBySlug(ctx, audit, key)
		switch {
		case err == nil:
			stats.Skipped++
			fmt.Fprintf(log, "category %q exists\n", category.Slug)
		case errors.Is(err, apperr.ErrNotFound):
			category, err = svcs.Categories.Create(ctx, audit, categoriesservice.CreateInput{
				Name:        c.Name,
				Slug:        optional(c.Slug),
				Description: optional(c.Description),
				Icon:        optional(c.Icon),
				SortOrder:   c.SortOrder,
				IsActive:    c.IsActive,
			})
			if err != nil {
				return stats, fmt.Errorf("category %q: %w", c.Name, err)
			}
			stats.Created++
			fmt.Fprintf(log, "category %q created\n", category.Slug)
		default:
			return stats, fmt.Errorf("category %q: %w", c.Name, err)
		}
		categoryIDs[category.Slug] = category.ID

		for _, sc := range c.Subcategories {
			created, err := applySubcategory(ctx, svcs.Subcategories, audit, category.ID, sc, log)
			if err != nil {
				return stats, err
			}
			if created {
				stats.Created++
			} else {
				stats.Skipped++
			}
		}
	}

	for _, d := range f.Doctors {
		created, err := applyDoctor(ctx, svcs, audit, categoryIDs, d, log)
		if err != nil {
			return stats, err
		}
		if created {
			stats.Created++
		} else {
			stats.Skipped++
		}
	}

	if len(f.Hero) > 0 {
		existing, err := svcs.Hero.List(ctx, audit, true)
		if err != nil {
			return stats, fmt.Errorf("list hero content: %w", err)
		}
		if len(existing) > 0 {
			stats.Skipped += len(f.Hero)
			fmt.Fprintf(log, "hero carousel already has %d slide(s)\n", len(existing))
			return stats, nil
		}
		for _, h := range f.Hero {
			if _, err := svcs.Hero.Create(ctx, audit, heroservice.CreateInput{
				Title:       h.Title,
				Subtitle:    optional(h.Subtitle),
				Description: optional(h.Description),
				Image:       optional(h.Image),
				CTAText:     optional(h.CTAText),
				CTALink:     optional(h.CTALink),
				SortOrder:   h.SortOrder,
				IsActive:    h.IsActive,
			}); err != nil {
				return stats, fmt.Errorf("hero %q: %w", h.Title, err)
			}
			stats.Created++
			fmt.Fprintf(log, "hero %q created\n", h.Title)
		}
	}

	return stats, nil
}

func applySubcategory(ctx context.Context, svc subcategoryService, audit requesttrace.AuditInfo, categoryID uuid.UUID, sc Subcategory, log io.Writer) (bool, error) {
	key := lookupSlug(sc.Slug, sc.Name)
	if existing, err := svc.GetBySlug(ctx, audit, key); err == nil {
		fmt.Fprintf(log, "subcategory %q exists\n", existing.Slug)
		return false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return false, fmt.Errorf("subcategory %q: %w", sc.Name, err)
	}

	created, err := svc.Create(ctx, audit, subcategoriesservice.CreateInput{
		CategoryID:  categoryID,
		Name:        sc.Name,
		Slug:        optional(sc.Slug),
		Description: optional(sc.Description),
		Image:       optional(sc.Image),
		SortOrder:   sc.SortOrder,
		IsActive:    sc.IsActive,
	})
	if err != nil {
		return false, fmt.Errorf("subcategory %q: %w", sc.Name, err)
	}
	fmt.Fprintf(log, "subcategory %q created\n", created.Slug)
	return true, nil
}

func applyDoctor(ctx context.Context, svcs Services, audit requesttrace.AuditInfo, categoryIDs map[string]uuid.UUID, d Doctor, log io.Writer) (bool, error) {
	key := lookupSlug(d.Slug, d.Name)
	if existing, err := svcs.Doctors.GetBySlug(ctx, audit, key); err == nil {
		fmt.Fprintf(log, "doctor %q exists\n", existing.Slug)
		return false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return false, fmt.Errorf("doctor %q: %w", d.Name, err)
	}

	input := doctorsservice.CreateInput{
		Name:            d.Name,
		Slug:            optional(d.Slug),
		Designation:     optional(d.Designation),
		Specialization:  optional(d.Specialization),
		Qualifications:  optional(d.Qualifications),
		ExperienceYears: d.ExperienceYears,
		Bio:             optional(d.Bio),
		Image:           optional(d.Image),
		Email:           optional(d.Email),
		Phone:           optional(d.Phone),
		SortOrder:       d.SortOrder,
		IsActive:        d.IsActive,
	}

	if d.Category != "" {
		id, err := resolveCategory(ctx, svcs.Categories, audit, categoryIDs, d.Category)
		if err != nil {
			return false, fmt.Errorf("doctor %q: %w", d.Name, err)
		}
		input.CategoryID = &id
	}

	if len(d.Availability) > 0 {
		raw, err := json.Marshal(d.Availability)
		if err != nil {
			return false, fmt.Errorf("doctor %q availability: %w", d.Name, err)
		}
		input.Availability = raw
	}

	created, err := svcs.Doctors.Create(ctx, audit, input)
	if err != nil {
		return false, fmt.Errorf("doctor %q: %w", d.Name, err)
	}
	fmt.Fprintf(log, "doctor %q created\n", created.Slug)
	return true, nil
}

func resolveCategory(ctx context.Context, svc categoryService, audit requesttrace.AuditInfo, known map[string]uuid.UUID, ref string) (uuid.UUID, error) {
	key := slug.Generate(ref)
	if id, ok := known[key]; ok {
		return id, nil
	}
	category, err := svc.GetBySlug(ctx, audit, key)
	if err != nil {
		return uuid.Nil, fmt.Errorf("category %q: %w", ref, err)
	}
	known[key] = category.ID
	return category.ID, nil
}

func lookupSlug(explicit, title string) string {
	if strings.TrimSpace(explicit) != "" {
		return slug.Generate(explicit)
	}
	return slug.Generate(title)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
