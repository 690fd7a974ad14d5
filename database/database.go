package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blog-backend/models"
)

type Database struct {
	db           *gorm.DB
	userRepo     *UserRepo
	blogPostRepo *BlogPostRepo
	blogTagRepo  *BlogTagRepo
	categoryRepo *CategoryRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		userRepo:     NewUserRepo(db),
		blogPostRepo: NewBlogPostRepo(db),
		blogTagRepo:  NewBlogTagRepo(db),
		categoryRepo: NewCategoryRepo(db),
	}
}

// primary pins a query to the write connection, so lookups made around a
// mutation never read from a lagging replica.
func primary(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Clauses(dbresolver.Write)
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) BlogTagRepo() *BlogTagRepo {
	return d.blogTagRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

// Migrate brings the schema up to date with the models.
func (d Database) Migrate() error {
	return models.Migrate(d.db)
}

// Ping checks that the primary connection is reachable.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
