package service

import (
	"context"
	"strings"

	"miro-content-service/internal/model"
	"miro-content-service/internal/query"
	"miro-content-service/internal/repository"
)

// TagProjects groups all cached project reads
const TagProjects = "projects"

// ProjectService merges stored projects to one locale and caches the
// per-project reads.
type ProjectService struct {
	store *repository.DocStore
	cache *repository.TaggedCache
}

// NewProjectService creates a ProjectService
func NewProjectService(store *repository.DocStore, cache *repository.TaggedCache) *ProjectService {
	return &ProjectService{store: store, cache: cache}
}

// List returns all projects flattened to the requested locale
func (s *ProjectService) List(ctx context.Context, locale string) ([]model.LocalizedProject, error) {
	projects, err := s.store.ListProjects()
	if err != nil {
		return nil, err
	}

	storageLocale := query.Params{Locale: query.NormalizeLocale(locale)}.StorageLocale()
	localized := make([]model.LocalizedProject, 0, len(projects))
	for _, p := range projects {
		localized = append(localized, Localize(p, storageLocale))
	}
	return localized, nil
}

// Get returns one project flattened to the requested locale, cached per
// (id, locale). Not-found propagates uncached.
func (s *ProjectService) Get(ctx context.Context, id, locale string) (*model.LocalizedProject, bool, error) {
	storageLocale := query.Params{Locale: query.NormalizeLocale(locale)}.StorageLocale()

	var project *model.LocalizedProject
	hit, err := s.cache.GetOrCompute(ctx, "project", []interface{}{id, storageLocale}, &project,
		func(ctx context.Context) (interface{}, error) {
			p, err := s.store.GetProject(id)
			if err != nil {
				return nil, err
			}
			localized := Localize(*p, storageLocale)
			return &localized, nil
		}, TagProjects)
	if err != nil {
		return nil, false, err
	}
	return project, hit, nil
}

// Create validates and stores a new project, then drops the project cache
func (s *ProjectService) Create(ctx context.Context, p model.Project) error {
	if strings.TrimSpace(p.ID) == "" {
		return repository.ErrProjectBadID
	}
	if err := s.store.CreateProject(p); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, TagProjects)
}

// Update replaces an existing project and drops the project cache
func (s *ProjectService) Update(ctx context.Context, p model.Project) error {
	if err := s.store.UpdateProject(p); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, TagProjects)
}

// Delete removes a project and drops the project cache
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(id); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, TagProjects)
}

// Localize flattens a project to one locale. Every field falls back to
// the Georgian base section when the requested section is missing or the
// field is empty.
func Localize(p model.Project, storageLocale string) model.LocalizedProject {
	base := p.Ge
	section := localeSection(p, storageLocale)

	out := model.LocalizedProject{
		ID:          p.ID,
		Images:      p.Images,
		Thumbnail:   p.Thumbnail,
		Description: []string{},
		FloorPlans:  []string{},
	}
	if out.Images == nil {
		out.Images = []string{}
	}

	if base != nil {
		out.Title = base.Title
		if base.Description != nil {
			out.Description = base.Description
		}
		if base.FloorPlans != nil {
			out.FloorPlans = base.FloorPlans
		}
	}
	if section != nil {
		if section.Title != "" {
			out.Title = section.Title
		}
		if len(section.Description) > 0 {
			out.Description = section.Description
		}
		if len(section.FloorPlans) > 0 {
			out.FloorPlans = section.FloorPlans
		}
	}

	return out
}

func localeSection(p model.Project, storageLocale string) *model.ProjectLocale {
	switch storageLocale {
	case "en":
		return p.En
	case "ru":
		return p.Ru
	default:
		return p.Ge
	}
}
