// Package mocksource provides testify-based mocks of the user source and the
// artifact writer consumed by the generation service.
package mocksource

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/usersite/internal/models"
)

// SourceMock simulates a user source such as the random-user API client.
type SourceMock struct {
	mock.Mock
}

// FetchUsers mocks fetching the batch of users.
func (m *SourceMock) FetchUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

// WriterMock simulates the artifact writer.
//
// OnWriteOverview and OnWriteProfiles, when set, replace testify's generic
// handling so that tests can inspect the rendered documents.
type WriterMock struct {
	mock.Mock

	OnWriteOverview func(pages map[string]string) ([]string, error)

	OnWriteProfiles func(profiles map[string]string) ([]string, error)
}

// Prepare mocks creating the output directories.
func (m *WriterMock) Prepare() error {
	args := m.Called()
	return args.Error(0)
}

// WriteUsers mocks dumping users.json.
func (m *WriterMock) WriteUsers(users []models.User) error {
	args := m.Called(users)
	return args.Error(0)
}

// WriteOverview mocks writing the overview pages.
func (m *WriterMock) WriteOverview(pages map[string]string) ([]string, error) {
	if m.OnWriteOverview != nil {
		return m.OnWriteOverview(pages)
	}
	args := m.Called(pages)
	paths, _ := args.Get(0).([]string)
	return paths, args.Error(1)
}

// WriteProfiles mocks writing the profile pages.
func (m *WriterMock) WriteProfiles(profiles map[string]string) ([]string, error) {
	if m.OnWriteProfiles != nil {
		return m.OnWriteProfiles(profiles)
	}
	args := m.Called(profiles)
	paths, _ := args.Get(0).([]string)
	return paths, args.Error(1)
}
