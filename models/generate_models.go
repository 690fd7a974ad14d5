package models

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&BlogPost{},
		&BlogTag{},
	}
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// GenerateModels migrates the schema, reports drift and writes typed query
// helpers for every model to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)

	log.Info().Msg("Migrating models...")
	if err := Migrate(db); err != nil {
		return err
	}

	if _, err := ColumnReport(db); err != nil {
		return err
	}

	g.Execute()
	log.Info().Str("outPath", outPath).Msg("Model generation complete")
	return nil
}

// ColumnReport lists, per table, the columns present in the database that no
// model field maps to. Tables that do not exist yet are skipped.
func ColumnReport(db *gorm.DB) (map[string][]string, error) {
	cache := &sync.Map{}
	report := make(map[string][]string)
	total := 0

	for _, model := range All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}

		logger := log.With().Str("table", s.Table).Logger()
		if !db.Migrator().HasTable(s.Table) {
			logger.Info().Msg("Table does not exist yet")
			continue
		}

		dbColumns, err := tableColumns(db, s.Table)
		if err != nil {
			return nil, err
		}

		unmapped := unmappedColumns(dbColumns, s.DBNames)
		if len(unmapped) == 0 {
			logger.Info().Msg("All columns are mapped")
			continue
		}
		report[s.Table] = unmapped
		total += len(unmapped)
		logger.Warn().Strs("columns", unmapped).Msg("Columns not mapped by the model")
	}

	log.Info().Int("total", total).Msg("Column report complete")
	return report, nil
}

func tableColumns(db *gorm.DB, table string) ([]string, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	columns := make([]string, 0, len(types))
	for _, ct := range types {
		columns = append(columns, ct.Name())
	}
	return columns, nil
}

// modelColumns returns the column names gorm maps for model, in field order.
func modelColumns(model interface{}) ([]string, error) {
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		return nil, err
	}
	return s.DBNames, nil
}

// unmappedColumns returns the sorted dbColumns absent from modelColumns.
func unmappedColumns(dbColumns, modelColumns []string) []string {
	mapped := make(map[string]struct{}, len(modelColumns))
	for _, c := range modelColumns {
		mapped[c] = struct{}{}
	}

	var out []string
	for _, c := range dbColumns {
		if _, ok := mapped[c]; !ok {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
