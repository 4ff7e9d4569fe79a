package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/telemetry"
)

// DrawRecord is the persisted form of a draw. The shape lives in Payload in
// the same JSON form the wire uses.
type DrawRecord struct {
	ID        string         `gorm:"type:varchar(27);primaryKey"`
	FloorID   string         `gorm:"type:varchar(64);index;not null"`
	UserID    string         `gorm:"type:varchar(64);index"`
	Kind      string         `gorm:"type:varchar(16)"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (DrawRecord) TableName() string { return "draws" }

func (r *DrawRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = ksuid.New().String()
	}
	return nil
}

// FloorRecord is the persisted form of a Floor.
type FloorRecord struct {
	ID        string `gorm:"type:varchar(64);primaryKey"`
	Name      string
	Image     string
	Width     int
	Height    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FloorRecord) TableName() string { return "floors" }

// Gorm stores floors and draws in SQLite or PostgreSQL.
type Gorm struct {
	db *gorm.DB
}

// GormOption configures OpenGorm.
type GormOption func(*gorm.Config)

// WithLogLevel sets the gorm logger level.
func WithLogLevel(l logger.LogLevel) GormOption {
	return func(c *gorm.Config) { c.Logger = logger.Default.LogMode(l) }
}

// OpenGorm opens dsn and migrates the schema. A dsn starting with
// postgres:// or postgresql:// uses PostgreSQL; anything else is treated as a
// SQLite file path.
func OpenGorm(dsn string, opts ...GormOption) (*Gorm, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	for _, o := range opts {
		o(cfg)
	}
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dial = postgres.Open(dsn)
	} else {
		dial = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&FloorRecord{}, &DrawRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Gorm{db: db}, nil
}

// NewGorm wraps an already opened database. The schema must exist.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Close releases the underlying connection pool.
func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(floorID string, d drawing.Draw) (DrawRecord, error) {
	d.FloorID = floorID
	d.Deleted = false
	b, err := json.Marshal(d)
	if err != nil {
		return DrawRecord{}, err
	}
	return DrawRecord{
		ID:      d.ID,
		FloorID: floorID,
		UserID:  d.UserID,
		Kind:    string(d.Kind()),
		Payload: datatypes.JSON(b),
	}, nil
}

func fromRecord(r DrawRecord) (drawing.Draw, error) {
	var d drawing.Draw
	if err := json.Unmarshal(r.Payload, &d); err != nil {
		return drawing.Draw{}, fmt.Errorf("decode draw %s: %w", r.ID, err)
	}
	d.ID = r.ID
	d.FloorID = r.FloorID
	d.Deleted = r.DeletedAt.Valid
	return d, nil
}

func (g *Gorm) CreateDraws(ctx context.Context, floorID string, draws []drawing.Draw) ([]drawing.Draw, error) {
	ctx, span := telemetry.StartSpan(ctx, "store.CreateDraws",
		attribute.String("floor.id", floorID), attribute.Int("draws", len(draws)))
	defer span.End()

	out := make([]drawing.Draw, 0, len(draws))
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range draws {
			if d.Shape == nil {
				return fmt.Errorf("create draw: %w", drawing.ErrUnknownType)
			}
			rec, err := toRecord(floorID, d)
			if err != nil {
				return fmt.Errorf("encode draw: %w", err)
			}
			if rec.ID != "" {
				res := tx.Unscoped().Model(&DrawRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
					"floor_id":   rec.FloorID,
					"user_id":    rec.UserID,
					"kind":       rec.Kind,
					"payload":    rec.Payload,
					"deleted_at": nil,
				})
				if res.Error != nil {
					return fmt.Errorf("restore draw %s: %w", rec.ID, res.Error)
				}
				if res.RowsAffected > 0 {
					d = d.Clone()
					d.FloorID = floorID
					d.Deleted = false
					out = append(out, d)
					continue
				}
			}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("insert draw: %w", err)
			}
			d = d.Clone()
			d.ID = rec.ID
			d.FloorID = floorID
			d.Deleted = false
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		telemetry.SpanError(ctx, err)
		return nil, err
	}
	return out, nil
}

func (g *Gorm) UpdateDraw(ctx context.Context, id string, p drawing.Patch) (drawing.Draw, error) {
	ctx, span := telemetry.StartSpan(ctx, "store.UpdateDraw", attribute.String("draw.id", id))
	defer span.End()

	var out drawing.Draw
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec DrawRecord
		if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("update draw %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load draw %s: %w", id, err)
		}
		d, err := fromRecord(rec)
		if err != nil {
			return err
		}
		d = p.Apply(d)
		next, err := toRecord(rec.FloorID, d)
		if err != nil {
			return fmt.Errorf("encode draw: %w", err)
		}
		if err := tx.Model(&rec).Update("payload", next.Payload).Error; err != nil {
			return fmt.Errorf("save draw %s: %w", id, err)
		}
		out = d
		return nil
	})
	if err != nil {
		telemetry.SpanError(ctx, err)
		return drawing.Draw{}, err
	}
	return out, nil
}

func (g *Gorm) DeleteDraws(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, span := telemetry.StartSpan(ctx, "store.DeleteDraws", attribute.StringSlice("draw.ids", ids))
	defer span.End()

	if err := g.db.WithContext(ctx).Where("id IN ?", ids).Delete(&DrawRecord{}).Error; err != nil {
		err = fmt.Errorf("delete draws: %w", err)
		telemetry.SpanError(ctx, err)
		return err
	}
	return nil
}

func (g *Gorm) ListDraws(ctx context.Context, floorID string) ([]drawing.Draw, error) {
	ctx, span := telemetry.StartSpan(ctx, "store.ListDraws", attribute.String("floor.id", floorID))
	defer span.End()

	var recs []DrawRecord
	if err := g.db.WithContext(ctx).Where("floor_id = ?", floorID).Order("created_at ASC, id ASC").Find(&recs).Error; err != nil {
		err = fmt.Errorf("list draws: %w", err)
		telemetry.SpanError(ctx, err)
		return nil, err
	}
	out := make([]drawing.Draw, 0, len(recs))
	for _, r := range recs {
		d, err := fromRecord(r)
		if err != nil {
			telemetry.SpanError(ctx, err)
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (g *Gorm) ListFloors(ctx context.Context) ([]Floor, error) {
	var recs []FloorRecord
	if err := g.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list floors: %w", err)
	}
	out := make([]Floor, 0, len(recs))
	for _, r := range recs {
		out = append(out, Floor{ID: r.ID, Name: r.Name, Image: r.Image, Width: r.Width, Height: r.Height})
	}
	return out, nil
}

func (g *Gorm) PutFloor(ctx context.Context, f Floor) error {
	if f.ID == "" {
		return fmt.Errorf("put floor: empty id")
	}
	rec := FloorRecord{ID: f.ID, Name: f.Name, Image: f.Image, Width: f.Width, Height: f.Height}
	if err := g.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("put floor %s: %w", f.ID, err)
	}
	return nil
}
