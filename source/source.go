package source

import (
	"context"
	"fmt"
	"iter"

	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

type Config interface {
	Validate() error
}

// Source streams records from one backend.
type Source interface {
	GetConfigRef() Config
	Type() string
	// Setup opens connections and files; Records must not be called before it.
	Setup(ctx context.Context) error
	// Records yields lazily. Breaking out of the range stops reading, and a
	// cancelled ctx ends the sequence with ctx.Err().
	Records(ctx context.Context) iter.Seq2[types.Record, error]
	Close(ctx context.Context) error
}

type NewFunc func() Source

var RegisteredSources = map[types.SourceType]NewFunc{}

// Decrypter turns an encrypted adapter section back into plain JSON.
type Decrypter interface {
	DecryptConfig(ctx context.Context, encrypted string) (string, error)
}

// NewSource creates, configures and sets up the source named by config.
// keyring may be nil when configs are not encrypted.
func NewSource(ctx context.Context, config *types.SourceConfig, keyring Decrypter) (Source, error) {
	newFunc, found := RegisteredSources[config.Type]
	if !found {
		return nil, fmt.Errorf("invalid source type has been passed [%s]", config.Type)
	}

	src := newFunc()
	adapter := config.Adapter
	if encrypted, ok := adapter.(string); ok && keyring != nil {
		plain, err := keyring.DecryptConfig(ctx, encrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt %s config: %s", config.Type, err)
		}
		adapter = []byte(plain)
	}

	if raw, ok := adapter.([]byte); ok {
		if err := utils.UnmarshalBytes(raw, src.GetConfigRef()); err != nil {
			return nil, err
		}
	} else if err := utils.Unmarshal(adapter, src.GetConfigRef()); err != nil {
		return nil, err
	}

	if err := src.GetConfigRef().Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate %s config: %s", config.Type, err)
	}

	if err := src.Setup(ctx); err != nil {
		// release whatever Setup opened before failing
		if cerr := src.Close(ctx); cerr != nil {
			logger.Warnf("failed to close %s source: %s", config.Type, cerr)
		}
		return nil, fmt.Errorf("failed to setup %s source: %s", config.Type, err)
	}

	logger.Infof("%s source is ready", src.Type())
	return src, nil
}
