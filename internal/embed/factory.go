package embed

import "github.com/directory-indexer/directory-indexer/internal/errs"

// Options configures New's choice of provider.
type Options struct {
	Provider string
	Endpoint string
	Model    string
	APIKey   string
	Dim      int
}

// New builds the Embedder named by opts.Provider ("ollama", "openai",
// or "mock"), mirroring the factory pattern the engine uses to select
// among variants without dynamic dispatch beyond this one switch.
func New(opts Options) (Embedder, error) {
	switch opts.Provider {
	case ProviderMock, "":
		return NewMock(opts.Dim), nil
	case ProviderOllama:
		return NewOllama(opts.Endpoint, opts.Model, opts.Dim), nil
	case ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, errs.Config("missing OPENAI_API_KEY").WithHint("set OPENAI_API_KEY when EMBEDDING_PROVIDER=openai")
		}
		return NewOpenAI(opts.Endpoint, opts.Model, opts.APIKey, opts.Dim), nil
	default:
		return nil, errs.Config("unknown embedding provider").WithIdentifier(opts.Provider).
			WithHint("use one of: ollama, openai, mock")
	}
}
