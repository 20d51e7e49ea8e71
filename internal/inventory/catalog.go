// Package inventory resolves projects, units and payment-plan templates for the booking
// workers. Plan templates come from the inventory database when one is configured and
// from the project payload of the sales API otherwise.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"booking-workers/internal/common/database"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/models"
)

var (
	ErrUnitNotFound         = errors.New("unit not found")
	ErrPlanTemplateNotFound = errors.New("payment plan template not found")
)

// ProjectSource loads a project tree. *salesapi.Client satisfies it.
type ProjectSource interface {
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
}

type Catalog struct {
	projects ProjectSource
	db       *database.PostgresClient
	logger   logger.Logger
}

// NewCatalog builds a catalog. pg may be nil, in which case templates are read from the
// project payload only.
func NewCatalog(projects ProjectSource, pg *database.PostgresClient, log logger.Logger) *Catalog {
	return &Catalog{projects: projects, db: pg, logger: log}
}

func (c *Catalog) Project(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := c.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	return project, nil
}

// Unit reloads the project and returns the unit with its current status, so callers can
// re-check availability right before acting on it.
func (c *Catalog) Unit(ctx context.Context, projectID, unitID string) (*models.Unit, *models.Project, error) {
	project, err := c.Project(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	unit, ok := project.FindUnit(unitID)
	if !ok {
		return nil, project, fmt.Errorf("unit %s in project %s: %w", unitID, projectID, ErrUnitNotFound)
	}
	return unit, project, nil
}

// PlanTemplate looks the template up in the inventory database first and falls back to
// the plans embedded in project.
func (c *Catalog) PlanTemplate(ctx context.Context, project *models.Project, planID string) (*models.PlanTemplate, error) {
	if c.db != nil && project != nil {
		tmpl, err := c.queryPlanTemplate(ctx, project.ID, planID)
		switch {
		case err == nil:
			return tmpl, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
		c.logger.Debug("Plan template not in database, using project payload", map[string]interface{}{
			"projectId": project.ID,
			"planId":    planID,
		})
	}

	if project != nil {
		if tmpl, ok := project.FindPlan(planID); ok {
			return tmpl, nil
		}
	}
	return nil, fmt.Errorf("plan %s: %w", planID, ErrPlanTemplateNotFound)
}

func (c *Catalog) queryPlanTemplate(ctx context.Context, projectID, planID string) (*models.PlanTemplate, error) {
	tmpl := &models.PlanTemplate{}
	err := c.db.QueryRow(ctx, `
		SELECT id, name
		FROM payment_plan_templates
		WHERE project_id = $1 AND id = $2`, projectID, planID).Scan(&tmpl.ID, &tmpl.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("query plan template %s: %w", planID, err)
	}

	rows, err := c.db.Query(ctx, `
		SELECT name, percentage, days, due_date
		FROM payment_plan_slabs
		WHERE template_id = $1
		ORDER BY position`, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan slabs %s: %w", planID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name    string
			pct     string
			days    sql.NullInt64
			dueDate sql.NullString
		)
		if err := rows.Scan(&name, &pct, &days, &dueDate); err != nil {
			return nil, fmt.Errorf("scan plan slab: %w", err)
		}
		percentage, err := decimal.NewFromString(pct)
		if err != nil {
			return nil, fmt.Errorf("plan %s slab %q percentage %q: %w", planID, name, pct, err)
		}
		tmpl.Slabs = append(tmpl.Slabs, models.SlabTemplate{
			Name:       name,
			Percentage: percentage,
			Days:       int(days.Int64),
			DueDate:    dueDate.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan slabs: %w", err)
	}
	return tmpl, nil
}
