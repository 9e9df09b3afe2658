package types

type SourceType string

const (
	JSONL    SourceType = "JSONL"
	Parquet  SourceType = "PARQUET"
	Postgres SourceType = "POSTGRES"
	MySQL    SourceType = "MYSQL"
	MongoDB  SourceType = "MONGODB"
)

// SourceConfig selects a registered source and carries its adapter config,
// decoded later into the source's own config type. With an encryption key
// set, Adapter may instead be a base64 ciphertext of that section.
type SourceConfig struct {
	Type    SourceType `json:"type" validate:"required,oneof=JSONL PARQUET POSTGRES MYSQL MONGODB"`
	Adapter any        `json:"adapter" validate:"required"`
}
