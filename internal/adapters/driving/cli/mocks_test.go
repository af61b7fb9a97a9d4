package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
)

// MockExtractionService implements driving.ExtractionService for testing.
type MockExtractionService struct {
	RunFunc func(ctx context.Context, req driving.RunRequest) (*domain.RunResult, error)
	LastReq driving.RunRequest
}

func (m *MockExtractionService) Run(ctx context.Context, req driving.RunRequest) (*domain.RunResult, error) {
	m.LastReq = req
	if m.RunFunc != nil {
		return m.RunFunc(ctx, req)
	}
	return testResult(req.ID), nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	LoadFunc func(ctx context.Context, uri string, opts driven.SourceOptions) (*domain.Document, error)
	LastOpts driven.SourceOptions
}

func (m *MockDocumentService) Load(ctx context.Context, uri string, opts driven.SourceOptions) (*domain.Document, error) {
	m.LastOpts = opts
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, uri, opts)
	}
	return &domain.Document{ID: "doc", URI: uri, Content: "Ball valve BV-2021-A100"}, nil
}

func (m *MockDocumentService) SupportedExtensions() []string {
	return []string{".md", ".txt", ".xlsx"}
}

// MockExportService implements driving.ExportService for testing.
type MockExportService struct {
	ExportFunc func(ctx context.Context, result *domain.RunResult, format domain.OutputFormat, dir, path string) (string, error)
	Format     domain.OutputFormat
	Dir        string
	Path       string
	Calls      int
}

func (m *MockExportService) Export(
	ctx context.Context, result *domain.RunResult, format domain.OutputFormat, dir, path string,
) (string, error) {
	m.Calls++
	m.Format, m.Dir, m.Path = format, dir, path
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, result, format, dir, path)
	}
	if path == "" {
		path = dir + "/" + result.ID + format.Extension()
	}
	return path, nil
}

func (m *MockExportService) Formats() []domain.OutputFormat {
	return domain.AllOutputFormats()
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	Settings      domain.AppSettings
	SetCalls      map[string]string
	SetErr        error
	ValidateErr   error
	ValidateLLM   error
	ValidateCalls int
	ResetCalled   bool
}

func newMockSettingsService() *MockSettingsService {
	return &MockSettingsService{
		Settings: domain.DefaultAppSettings(),
		SetCalls: make(map[string]string),
	}
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.Settings
	return &s, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.Settings = *settings
	return nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.SetCalls[key] = value
	return nil
}

func (m *MockSettingsService) Keys() []string {
	return []string{"llm.model", "llm.provider", "pipeline.chunk_size"}
}

func (m *MockSettingsService) Reset() error {
	m.ResetCalled = true
	m.Settings = domain.DefaultAppSettings()
	return nil
}

func (m *MockSettingsService) Validate() error {
	return m.ValidateErr
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *MockSettingsService) ValidateLLMConfig() error {
	m.ValidateCalls++
	return m.ValidateLLM
}

// MockHistoryService implements driving.HistoryService for testing.
type MockHistoryService struct {
	Runs    []domain.RunRecord
	Deleted []string
}

func (m *MockHistoryService) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	if limit > 0 && limit < len(m.Runs) {
		return m.Runs[:limit], nil
	}
	return m.Runs, nil
}

func (m *MockHistoryService) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	for i := range m.Runs {
		if m.Runs[i].ID == id {
			return &m.Runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockHistoryService) Delete(_ context.Context, id string) error {
	if _, err := m.Get(context.Background(), id); err != nil {
		return err
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

// MockModelService implements driving.ModelService for testing.
type MockModelService struct {
	Models  []string
	Err     error
	LastLLM domain.LLMSettings
}

func (m *MockModelService) ListModels(_ context.Context, settings domain.LLMSettings) ([]string, error) {
	m.LastLLM = settings
	return m.Models, m.Err
}

func (m *MockModelService) Ping(_ context.Context, settings domain.LLMSettings) error {
	m.LastLLM = settings
	return m.Err
}

// MockSchemaService implements driving.SchemaService for testing.
type MockSchemaService struct {
	LoadedPath string
	LoadErr    error
}

func (m *MockSchemaService) Load(path string) (*domain.RecordSchema, error) {
	m.LoadedPath = path
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return domain.ValveSchema(), nil
}

func (m *MockSchemaService) Hint(_ *domain.RecordSchema) (json.RawMessage, error) {
	return json.RawMessage(`{"type":"object"}`), nil
}

func (m *MockSchemaService) Render(schema *domain.RecordSchema, ext string) ([]byte, error) {
	if ext != ".toml" && ext != ".json" && ext != ".yaml" {
		return nil, domain.ErrUnsupportedType
	}
	return []byte("name = \"" + schema.Name + "\"\n"), nil
}

// testMocks bundles the mocks installed by setupTestServices.
type testMocks struct {
	extraction *MockExtractionService
	documents  *MockDocumentService
	export     *MockExportService
	settings   *MockSettingsService
	history    *MockHistoryService
	models     *MockModelService
	schema     *MockSchemaService
}

var mocks *testMocks

// setupTestServices installs fresh mocks and returns a function restoring the previous services.
func setupTestServices() func() {
	old := Services{
		Extraction: extractionService,
		Documents:  documentService,
		Export:     exportService,
		Settings:   settingsService,
		History:    historyService,
		Models:     modelService,
		Schema:     schemaService,
	}
	resetFlags(rootCmd)

	mocks = &testMocks{
		extraction: &MockExtractionService{},
		documents:  &MockDocumentService{},
		export:     &MockExportService{},
		settings:   newMockSettingsService(),
		history:    &MockHistoryService{},
		models:     &MockModelService{},
		schema:     &MockSchemaService{},
	}
	SetServices(Services{
		Extraction: mocks.extraction,
		Documents:  mocks.documents,
		Export:     mocks.export,
		Settings:   mocks.settings,
		History:    mocks.history,
		Models:     mocks.models,
		Schema:     mocks.schema,
	})

	return func() {
		SetServices(old)
		resetFlags(rootCmd)
		mocks = nil
	}
}

func testResult(id string) *domain.RunResult {
	schema := domain.ValveSchema()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.RunResult{
		ID:         id,
		Status:     domain.RunDone,
		Model:      "llama3.2",
		Source:     "valves.txt",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Records: domain.ResultSet{
			Schema: schema,
			Records: []domain.Record{
				{Values: map[string]any{"serial_id": "BV-2021-A100", "valve_type": "ball"}},
			},
		},
		Summary: domain.RunSummary{
			ChunksTotal:         2,
			ChunksProcessed:     2,
			CandidatesExtracted: 2,
			RecordsAccepted:     1,
			DuplicatesDiscarded: 1,
		},
	}
}

// resetFlags restores every flag of cmd and its subcommands to its default,
// since commands are package singletons shared across tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
