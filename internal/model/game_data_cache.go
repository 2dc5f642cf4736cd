package model

import (
	"time"

	"github.com/uptrace/bun"
)

// GameDataCache is one persisted raw table, unique per (data_source, table_name).
type GameDataCache struct {
	bun.BaseModel `bun:"game_data_caches,alias:gdc"`

	ID         int64     `bun:",pk,autoincrement" json:"id" msgpack:"-"`
	DataSource string    `bun:"data_source,notnull" json:"dataSource" msgpack:"s"`
	TableName  string    `bun:"table_name,notnull" json:"tableName" msgpack:"t"`
	Data       string    `bun:"data,notnull" json:"-" msgpack:"d"`
	Checksum   string    `bun:"checksum" json:"checksum" msgpack:"c"`
	FetchedAt  time.Time `bun:"fetched_at,notnull" json:"fetchedAt" msgpack:"f"`
	IsValid    bool      `bun:"is_valid,notnull,default:true" json:"isValid" msgpack:"v"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt" msgpack:"ca"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt" msgpack:"ua"`
}

// SourceCacheStat summarizes the persisted entries of one data source.
type SourceCacheStat struct {
	DataSource    string     `bun:"data_source" json:"dataSource"`
	Count         int        `bun:"count" json:"count"`
	LastUpdatedAt *time.Time `bun:"last_updated_at" json:"lastUpdatedAt"`
}
