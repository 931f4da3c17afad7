package ui

import (
	"context"

	"github.com/stretchr/testify/mock"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	"walletlab/domain/preset"
	"walletlab/domain/user"
	"walletlab/ports"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id core.UserID) (*user.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetOrCreateDefault(ctx context.Context) (*user.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Create(ctx context.Context, file *dataset.UploadedFile) error {
	return m.Called(ctx, file).Error(0)
}

func (m *MockUploadRepository) GetByID(ctx context.Context, id core.FileID) (*dataset.UploadedFile, error) {
	args := m.Called(ctx, id)
	if f := args.Get(0); f != nil {
		return f.(*dataset.UploadedFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUploadRepository) ListByUser(ctx context.Context, userID core.UserID, slot dataset.Slot, limit int) ([]*dataset.UploadedFile, error) {
	args := m.Called(ctx, userID, slot, limit)
	if files := args.Get(0); files != nil {
		return files.([]*dataset.UploadedFile), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPresetRepository struct {
	mock.Mock
}

func (m *MockPresetRepository) Create(ctx context.Context, p *preset.Preset) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPresetRepository) GetByID(ctx context.Context, id core.PresetID) (*preset.Preset, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*preset.Preset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPresetRepository) List(ctx context.Context, filters ports.PresetFilters) ([]*preset.Preset, error) {
	args := m.Called(ctx, filters)
	if presets := args.Get(0); presets != nil {
		return presets.([]*preset.Preset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPresetRepository) Delete(ctx context.Context, id core.PresetID, authorID core.UserID) error {
	return m.Called(ctx, id, authorID).Error(0)
}
