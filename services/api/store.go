package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"mentorbill/pkg/bus"
	gos3 "mentorbill/pkg/s3"
)

// Store holds external dependencies required by the API layer. The pgx pool
// serves the raw reporting queries, the ORM everything else; S3 and the bus
// are optional and checked before use.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	S3  *gos3.Client
	Bus *bus.Bus
}
