// Package mocks provides a testify mock of archive.Packager.
package mocks

import (
	context "context"

	afero "github.com/spf13/afero"

	mock "github.com/stretchr/testify/mock"
)

// MockPackager is an autogenerated mock type for the Packager type
type MockPackager struct {
	mock.Mock
}

type MockPackager_Expecter struct {
	mock *mock.Mock
}

func (_m *MockPackager) EXPECT() *MockPackager_Expecter {
	return &MockPackager_Expecter{mock: &_m.Mock}
}

// Create provides a mock function with given fields: ctx, fsys, root, paths, dest
func (_m *MockPackager) Create(ctx context.Context, fsys afero.Fs, root string, paths []string, dest string) error {
	ret := _m.Called(ctx, fsys, root, paths, dest)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, afero.Fs, string, []string, string) error); ok {
		r0 = rf(ctx, fsys, root, paths, dest)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockPackager_Create_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Create'
type MockPackager_Create_Call struct {
	*mock.Call
}

// Create is a helper method to define mock.On call
//   - ctx context.Context
//   - fsys afero.Fs
//   - root string
//   - paths []string
//   - dest string
func (_e *MockPackager_Expecter) Create(ctx interface{}, fsys interface{}, root interface{}, paths interface{}, dest interface{}) *MockPackager_Create_Call {
	return &MockPackager_Create_Call{Call: _e.mock.On("Create", ctx, fsys, root, paths, dest)}
}

func (_c *MockPackager_Create_Call) Run(run func(ctx context.Context, fsys afero.Fs, root string, paths []string, dest string)) *MockPackager_Create_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(afero.Fs), args[2].(string), args[3].([]string), args[4].(string))
	})
	return _c
}

func (_c *MockPackager_Create_Call) Return(_a0 error) *MockPackager_Create_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockPackager_Create_Call) RunAndReturn(run func(context.Context, afero.Fs, string, []string, string) error) *MockPackager_Create_Call {
	_c.Call.Return(run)
	return _c
}

// Extract provides a mock function with given fields: ctx, fsys, path, dest
func (_m *MockPackager) Extract(ctx context.Context, fsys afero.Fs, path string, dest string) ([]string, error) {
	ret := _m.Called(ctx, fsys, path, dest)

	if len(ret) == 0 {
		panic("no return value specified for Extract")
	}

	var r0 []string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, afero.Fs, string, string) ([]string, error)); ok {
		return rf(ctx, fsys, path, dest)
	}
	if rf, ok := ret.Get(0).(func(context.Context, afero.Fs, string, string) []string); ok {
		r0 = rf(ctx, fsys, path, dest)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]string)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, afero.Fs, string, string) error); ok {
		r1 = rf(ctx, fsys, path, dest)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockPackager_Extract_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Extract'
type MockPackager_Extract_Call struct {
	*mock.Call
}

// Extract is a helper method to define mock.On call
//   - ctx context.Context
//   - fsys afero.Fs
//   - path string
//   - dest string
func (_e *MockPackager_Expecter) Extract(ctx interface{}, fsys interface{}, path interface{}, dest interface{}) *MockPackager_Extract_Call {
	return &MockPackager_Extract_Call{Call: _e.mock.On("Extract", ctx, fsys, path, dest)}
}

func (_c *MockPackager_Extract_Call) Run(run func(ctx context.Context, fsys afero.Fs, path string, dest string)) *MockPackager_Extract_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(afero.Fs), args[2].(string), args[3].(string))
	})
	return _c
}

func (_c *MockPackager_Extract_Call) Return(_a0 []string, _a1 error) *MockPackager_Extract_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockPackager_Extract_Call) RunAndReturn(run func(context.Context, afero.Fs, string, string) ([]string, error)) *MockPackager_Extract_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockPackager creates a new instance of MockPackager. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockPackager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPackager {
	mock := &MockPackager{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
