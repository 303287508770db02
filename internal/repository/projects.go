package repository

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"miro-content-service/internal/model"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketProjects = []byte("projects")
	bucketAdmins   = []byte("admins")
)

// Sentinel errors surfaced by the project store
var (
	ErrProjectBadID    = fmt.Errorf("project id is empty")
	ErrProjectExists   = fmt.Errorf("project id already exists")
	ErrProjectNotFound = fmt.Errorf("project not found")
	ErrAdminNotFound   = fmt.Errorf("admin not found")
)

// DocStore is the embedded document store for portfolio projects and admin
// records. Projects are keyed by their caller-assigned string id, admins
// by numeric id.
type DocStore struct {
	db *bolt.DB
}

// NewDocStore opens (or creates) the bolt database and its buckets
func NewDocStore(path string) (*DocStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketProjects, bucketAdmins} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DocStore{db: db}, nil
}

// Close closes the underlying database
func (s *DocStore) Close() error {
	return s.db.Close()
}

// ================== Projects ==================

// CreateProject inserts a project. The id is caller-assigned and must be
// unique; a duplicate leaves the stored record untouched.
func (s *DocStore) CreateProject(p model.Project) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		if b.Get([]byte(p.ID)) != nil {
			return ErrProjectExists
		}
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put([]byte(p.ID), data)
	})
}

// GetProject fetches a project by id
func (s *DocStore) GetProject(id string) (*model.Project, error) {
	var p *model.Project
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketProjects).Get([]byte(id))
		if data == nil {
			return ErrProjectNotFound
		}
		var decoded model.Project
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}
		p = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns all projects in key order
func (s *DocStore) ListProjects() ([]model.Project, error) {
	projects := []model.Project{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProjects).ForEach(func(_, data []byte) error {
			var p model.Project
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}
			projects = append(projects, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateProject replaces an existing project, preserving its creation time
func (s *DocStore) UpdateProject(p model.Project) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		existing := b.Get([]byte(p.ID))
		if existing == nil {
			return ErrProjectNotFound
		}

		var prev model.Project
		if err := json.Unmarshal(existing, &prev); err != nil {
			return err
		}
		p.CreatedAt = prev.CreatedAt
		p.UpdatedAt = time.Now()

		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put([]byte(p.ID), data)
	})
}

// DeleteProject removes a project by id
func (s *DocStore) DeleteProject(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		if b.Get([]byte(id)) == nil {
			return ErrProjectNotFound
		}
		return b.Delete([]byte(id))
	})
}

// ================== Admins ==================

// PutAdmin stores an admin record keyed by numeric id
func (s *DocStore) PutAdmin(a model.Admin) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketAdmins).Put(adminKey(a.AdminID), data)
	})
}

// GetAdmin fetches an admin by numeric id
func (s *DocStore) GetAdmin(id int64) (*model.Admin, error) {
	var admin *model.Admin
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAdmins).Get(adminKey(id))
		if data == nil {
			return ErrAdminNotFound
		}
		var decoded model.Admin
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}
		admin = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// GetAdminByUsername scans for an admin with the given username
func (s *DocStore) GetAdminByUsername(username string) (*model.Admin, error) {
	var admin *model.Admin
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAdmins).ForEach(func(_, data []byte) error {
			var a model.Admin
			if err := json.Unmarshal(data, &a); err != nil {
				return err
			}
			if a.Username == username {
				admin = &a
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

func adminKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
