package entity

import "time"

type SchemaMigration struct {
	ID        int64     `db:"id" json:"id"`
	VersionID int64     `db:"version_id" json:"versionId"`
	IsApplied bool      `db:"is_applied" json:"isApplied"`
	Tstamp    time.Time `db:"tstamp" json:"tstamp"`
}
