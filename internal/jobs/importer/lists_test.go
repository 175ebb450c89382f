package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/subimport/internal/models"
)

type mockImportAPI struct {
	mock.Mock
}

func (m *mockImportAPI) StartImport(ctx context.Context, params models.ImportParams, file *models.UploadFile) (*models.JobState, error) {
	args := m.Called(ctx, params, file)
	state, _ := args.Get(0).(*models.JobState)
	return state, args.Error(1)
}

func (m *mockImportAPI) GetStatus(ctx context.Context) (*models.JobState, error) {
	args := m.Called(ctx)
	state, _ := args.Get(0).(*models.JobState)
	return state, args.Error(1)
}

func (m *mockImportAPI) GetLogs(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockImportAPI) StopImport(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockImportAPI) GetLists(ctx context.Context) ([]models.List, error) {
	args := m.Called(ctx)
	lists, _ := args.Get(0).([]models.List)
	return lists, args.Error(1)
}

func TestResolveListIDsNumericOnly(t *testing.T) {
	api := &mockImportAPI{}

	ids, err := ResolveListIDs(context.Background(), api, []string{"3", " 1 ", "3", ""})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, ids)

	api.AssertNotCalled(t, "GetLists", mock.Anything)
}

func TestResolveListIDsByName(t *testing.T) {
	api := &mockImportAPI{}
	api.On("GetLists", mock.Anything).Return([]models.List{
		{ID: 1, Name: "Default list"},
		{ID: 2, Name: "Opt-in list"},
	}, nil).Once()

	ids, err := ResolveListIDs(context.Background(), api, []string{"opt-in list", "1", "Default List"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids)

	api.AssertExpectations(t)
}

func TestResolveListIDsErrors(t *testing.T) {
	t.Run("unknown name", func(t *testing.T) {
		api := &mockImportAPI{}
		api.On("GetLists", mock.Anything).Return([]models.List{{ID: 1, Name: "Default list"}}, nil)

		_, err := ResolveListIDs(context.Background(), api, []string{"newsletter"})
		assert.ErrorContains(t, err, `unknown list "newsletter"`)
	})

	t.Run("non-positive id", func(t *testing.T) {
		_, err := ResolveListIDs(context.Background(), &mockImportAPI{}, []string{"0"})
		assert.ErrorContains(t, err, "invalid list id 0")
	})

	t.Run("lookup failure", func(t *testing.T) {
		api := &mockImportAPI{}
		api.On("GetLists", mock.Anything).Return(nil, errors.New("unauthorized"))

		_, err := ResolveListIDs(context.Background(), api, []string{"Default list"})
		assert.ErrorContains(t, err, "failed to fetch lists: unauthorized")
	})
}

func TestSubmitWithMockedAPI(t *testing.T) {
	api := &mockImportAPI{}
	req := validUpload(t)
	api.On("StartImport", mock.Anything, req.Params(), req.File).
		Return(&models.JobState{Status: models.JobStatusImporting, Name: "import-1", Total: 10}, nil).Once()
	api.On("GetStatus", mock.Anything).Return(&models.JobState{Status: models.JobStatusImporting, Name: "import-1", Imported: 4, Total: 10}, nil)
	api.On("GetLogs", mock.Anything).Return("started", nil)

	c, _ := newTestController(t, api)
	require.NoError(t, c.Submit(context.Background(), req))

	state := c.State()
	assert.Equal(t, "import-1", state.Name)
	assert.Equal(t, 10, state.Total)

	assert.Eventually(t, func() bool { return c.Progress() == 40 }, waitFor, pollTick)
	api.AssertCalled(t, "StartImport", mock.Anything, req.Params(), req.File)
}
