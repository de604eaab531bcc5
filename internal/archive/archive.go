package archive

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChunkRecord is one received replay chunk, stored verbatim (marker and
// compressed payload included) so re-feeding it through ingestion
// reproduces the original timestamps exactly.
type ChunkRecord struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"index:idx_session_chunk,unique"`
	ChunkIndex int    `gorm:"index:idx_session_chunk,unique"`
	Frame      []byte
	CreatedAt  time.Time
}

// Catalog is the optional postgres-backed store of recorded sessions.
// It implements hub.Archive.
type Catalog struct {
	db *gorm.DB
}

func Open(dsn string) (*Catalog, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ChunkRecord{}); err != nil {
		return nil, err
	}
	return &Catalog{db: db}, nil
}

// SaveChunk upserts one chunk frame; re-receiving a session overwrites
// the previous copy.
func (c *Catalog) SaveChunk(sessionID string, index int, frame []byte) error {
	record := ChunkRecord{SessionID: sessionID, ChunkIndex: index, Frame: frame}
	return c.db.
		Where(ChunkRecord{SessionID: sessionID, ChunkIndex: index}).
		Assign(map[string]any{"frame": frame}).
		FirstOrCreate(&record).Error
}

// Chunks returns a session's frames in arrival order. An empty slice
// means the session was never archived.
func (c *Catalog) Chunks(sessionID string) ([][]byte, error) {
	var records []ChunkRecord
	err := c.db.
		Where("session_id = ?", sessionID).
		Order("chunk_index asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	frames := make([][]byte, 0, len(records))
	for _, r := range records {
		frames = append(frames, r.Frame)
	}
	return frames, nil
}
