package course

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prefeitura-rio/gorio-admin/core"
)

// NewServiceMock returns a Service whose clock is frozen at now.
func NewServiceMock(repo Repository, now time.Time, logger core.Logger) *Service {
	return &Service{repo: repo, now: func() time.Time { return now }, logger: logger}
}

// MemoryRepository is an in-memory course API for tests.
type MemoryRepository struct {
	mu      sync.Mutex
	courses map[int]APICourse
	nextID  int
}

func NewMemoryRepository(courses ...APICourse) *MemoryRepository {
	repo := &MemoryRepository{courses: make(map[int]APICourse, len(courses)), nextID: 1}
	for _, ac := range courses {
		if ac.ID >= repo.nextID {
			repo.nextID = ac.ID + 1
		}
		repo.courses[ac.ID] = ac
	}
	return repo
}

func (repo *MemoryRepository) ListCourses(_ context.Context, filter ListFilter) (APIList, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	ids := make([]int, 0, len(repo.courses))
	for id := range repo.courses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var list APIList
	list.Meta.Page, list.Meta.PerPage, list.Meta.Total = filter.Page, filter.PerPage, len(ids)
	from := (filter.Page - 1) * filter.PerPage
	for i := from; i < len(ids) && i < from+filter.PerPage; i++ {
		list.Data = append(list.Data, repo.courses[ids[i]])
	}
	return list, nil
}

func (repo *MemoryRepository) GetCourse(_ context.Context, id int) (APICourse, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	ac, ok := repo.courses[id]
	if !ok {
		return APICourse{}, ErrNotFound
	}
	return ac, nil
}

func (repo *MemoryRepository) CreateCourse(_ context.Context, ac APICourse) (APICourse, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	ac.ID = repo.nextID
	repo.nextID++
	repo.courses[ac.ID] = ac
	return ac, nil
}

func (repo *MemoryRepository) UpdateCourse(_ context.Context, id int, ac APICourse) (APICourse, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.courses[id]; !ok {
		return APICourse{}, ErrNotFound
	}
	ac.ID = id
	repo.courses[id] = ac
	return ac, nil
}
