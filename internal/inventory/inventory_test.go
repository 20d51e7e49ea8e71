package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"booking-workers/internal/common/database"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/models"
)

// ==========================
// Mock Sources
// ==========================

type MockProjects struct {
	mock.Mock
}

func (m *MockProjects) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

type MockCostTemplates struct {
	mock.Mock
}

func (m *MockCostTemplates) GetCostTemplate(ctx context.Context, leadID string) (*models.CostTemplate, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CostTemplate), args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func createProject() *models.Project {
	return &models.Project{
		ID: "proj-1",
		Towers: []models.Tower{{
			ID: "t-1",
			Floors: []models.Floor{{
				ID: "f-1",
				Units: []models.Unit{
					{ID: "u-101", Status: models.UnitAvailable},
					{ID: "u-102", Status: models.UnitBooked},
				},
			}},
		}},
		PaymentPlans: []models.PlanTemplate{{
			ID:    "plan-payload",
			Name:  "Construction linked",
			Slabs: []models.SlabTemplate{{Name: "Booking", Percentage: decimal.NewFromInt(100)}},
		}},
	}
}

const (
	templateQuery = `FROM payment_plan_templates WHERE project_id = \$1 AND id = \$2`
	slabQuery     = `FROM payment_plan_slabs WHERE template_id = \$1 ORDER BY position`
)

// ==========================
// Catalog
// ==========================

func TestCatalog_Unit(t *testing.T) {
	projects := new(MockProjects)
	projects.On("GetProject", mock.Anything, "proj-1").Return(createProject(), nil)
	catalog := NewCatalog(projects, nil, logger.NewTestLogger(t))

	unit, project, err := catalog.Unit(context.Background(), "proj-1", "u-102")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", project.ID)
	assert.False(t, unit.IsAvailable())

	_, _, err = catalog.Unit(context.Background(), "proj-1", "u-999")
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestCatalog_Project_SourceError(t *testing.T) {
	projects := new(MockProjects)
	projects.On("GetProject", mock.Anything, "proj-1").Return(nil, errors.New("connection refused"))
	catalog := NewCatalog(projects, nil, logger.NewTestLogger(t))

	_, err := catalog.Project(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCatalog_PlanTemplate_FromDatabase(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectQuery(templateQuery).
		WithArgs("proj-1", "plan-db").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("plan-db", "Down payment"))
	sqlMock.ExpectQuery(slabQuery).
		WithArgs("plan-db").
		WillReturnRows(sqlmock.NewRows([]string{"name", "percentage", "days", "due_date"}).
			AddRow("Booking", "10", 0, "2026-01-15").
			AddRow("Within 30 days", "33.33", 30, nil).
			AddRow("Possession", "56.67", nil, nil))

	catalog := NewCatalog(new(MockProjects), database.NewPostgresFromDB(db), logger.NewTestLogger(t))
	tmpl, err := catalog.PlanTemplate(context.Background(), createProject(), "plan-db")

	require.NoError(t, err)
	assert.Equal(t, "Down payment", tmpl.Name)
	require.Len(t, tmpl.Slabs, 3)
	assert.Equal(t, "2026-01-15", tmpl.Slabs[0].DueDate)
	assert.Equal(t, 30, tmpl.Slabs[1].Days)
	assert.True(t, decimal.RequireFromString("33.33").Equal(tmpl.Slabs[1].Percentage))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCatalog_PlanTemplate_FallsBackToPayload(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectQuery(templateQuery).
		WithArgs("proj-1", "plan-payload").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	catalog := NewCatalog(new(MockProjects), database.NewPostgresFromDB(db), logger.NewTestLogger(t))
	tmpl, err := catalog.PlanTemplate(context.Background(), createProject(), "plan-payload")

	require.NoError(t, err)
	assert.Equal(t, "Construction linked", tmpl.Name)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCatalog_PlanTemplate_Errors(t *testing.T) {
	t.Run("unknown everywhere", func(t *testing.T) {
		catalog := NewCatalog(new(MockProjects), nil, logger.NewTestLogger(t))
		_, err := catalog.PlanTemplate(context.Background(), createProject(), "plan-x")
		assert.ErrorIs(t, err, ErrPlanTemplateNotFound)
	})

	t.Run("database failure is not masked", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		sqlMock.ExpectQuery(templateQuery).
			WithArgs("proj-1", "plan-payload").
			WillReturnError(errors.New("connection reset"))

		catalog := NewCatalog(new(MockProjects), database.NewPostgresFromDB(db), logger.NewTestLogger(t))
		_, err = catalog.PlanTemplate(context.Background(), createProject(), "plan-payload")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPlanTemplateNotFound)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("bad percentage", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		sqlMock.ExpectQuery(templateQuery).
			WithArgs("proj-1", "plan-db").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("plan-db", "Broken"))
		sqlMock.ExpectQuery(slabQuery).
			WithArgs("plan-db").
			WillReturnRows(sqlmock.NewRows([]string{"name", "percentage", "days", "due_date"}).
				AddRow("Booking", "ten", nil, nil))

		catalog := NewCatalog(new(MockProjects), database.NewPostgresFromDB(db), logger.NewTestLogger(t))
		_, err = catalog.PlanTemplate(context.Background(), createProject(), "plan-db")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `percentage "ten"`)
	})
}

// ==========================
// Cost Template Cache
// ==========================

func costTemplate() *models.CostTemplate {
	return &models.CostTemplate{
		GSTPercent:                   decimal.NewFromInt(5),
		StampDutyPercent:             decimal.NewFromInt(6),
		DevelopmentChargesPSF:        decimal.NewFromInt(500),
		ProvisionalMaintenanceMonths: 12,
	}
}

func TestCostTemplates_CacheMissLoadsAndStores(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	source := new(MockCostTemplates)
	tmpl := costTemplate()
	source.On("GetCostTemplate", mock.Anything, "lead-1").Return(tmpl, nil).Once()

	data, _ := json.Marshal(tmpl)
	redisMock.ExpectGet("booking:cost-template:lead-1").RedisNil()
	redisMock.ExpectSet("booking:cost-template:lead-1", data, 10*time.Minute).SetVal("OK")

	cache := NewCostTemplates(source, database.NewRedisFromClient(redisClient), 10*time.Minute, logger.NewTestLogger(t))
	got, cached, err := cache.Get(context.Background(), "lead-1")

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 12, got.ProvisionalMaintenanceMonths)
	source.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCostTemplates_CacheHitSkipsSource(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	source := new(MockCostTemplates)

	data, _ := json.Marshal(costTemplate())
	redisMock.ExpectGet("booking:cost-template:lead-1").SetVal(string(data))

	cache := NewCostTemplates(source, database.NewRedisFromClient(redisClient), time.Minute, logger.NewTestLogger(t))
	got, cached, err := cache.Get(context.Background(), "lead-1")

	require.NoError(t, err)
	assert.True(t, cached)
	assert.True(t, decimal.NewFromInt(5).Equal(got.GSTPercent))
	source.AssertNotCalled(t, "GetCostTemplate", mock.Anything, mock.Anything)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCostTemplates_RedisDownStillServes(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	source := new(MockCostTemplates)
	tmpl := costTemplate()
	source.On("GetCostTemplate", mock.Anything, "lead-1").Return(tmpl, nil)

	data, _ := json.Marshal(tmpl)
	redisMock.ExpectGet("booking:cost-template:lead-1").SetErr(errors.New("i/o timeout"))
	redisMock.ExpectSet("booking:cost-template:lead-1", data, time.Minute).SetErr(errors.New("i/o timeout"))

	cache := NewCostTemplates(source, database.NewRedisFromClient(redisClient), time.Minute, logger.NewTestLogger(t))
	got, cached, err := cache.Get(context.Background(), "lead-1")

	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotNil(t, got)
}

func TestCostTemplates_SourceError(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	source := new(MockCostTemplates)
	source.On("GetCostTemplate", mock.Anything, "lead-1").Return(nil, errors.New("502 bad gateway"))

	redisMock.ExpectGet("booking:cost-template:lead-1").RedisNil()

	cache := NewCostTemplates(source, database.NewRedisFromClient(redisClient), time.Minute, logger.NewTestLogger(t))
	_, _, err := cache.Get(context.Background(), "lead-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead-1")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCostTemplates_Invalidate(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("booking:cost-template:lead-1").SetVal(1)

	cache := NewCostTemplates(new(MockCostTemplates), database.NewRedisFromClient(redisClient), time.Minute, logger.NewTestLogger(t))
	require.NoError(t, cache.Invalidate(context.Background(), "lead-1"))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
