package config

const (
	defaultStorefrontDir         = "."
	defaultPublicDir             = "public"
	defaultMasksDir              = "assets/masks"
	defaultProductsFile          = "data/products.json"
	defaultDetailsFile           = "data/productDetails.json"
	defaultWorkDir               = "tmp/color-variants"
	defaultVariantLog            = "logs/color-variants.csv"
	defaultPreviewDir            = "/tmp/variant-previews"
	defaultMaskPreviewDir        = "/tmp/mask-previews"
	defaultStateDir              = "~/.local/share/arva"
	defaultLogDir                = "~/.local/share/arva/logs"
	defaultImageEditBaseURL      = "https://api.openai.com/v1"
	defaultImageEditModel        = "dall-e-2"
	defaultImageEditSize         = "1024x1024"
	defaultImageEditTimeout      = 120
	defaultRequestIntervalMillis = 4000
	defaultRetryAttempts         = 3
	defaultRetryBaseDelay        = 2
	defaultRetryMaxDelay         = 30
	defaultCandidates            = 3
	defaultWorkers               = 1
	defaultJPEGQuality           = 92
	defaultRecolorBlend          = 1.0
	defaultPreviewQuality        = 88
	defaultNotifyTimeout         = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// defaultSlugs is the merchant-feed allowlist of products that get variants.
var defaultSlugs = []string{
	"atlas-sectional",
	"atlas-3-seater",
	"atlas-loveseat",
	"alto-sectional",
	"alto-3-seater",
	"alto-loveseat",
	"oris-sectional",
	"oris-3-seater",
	"oris-loveseat",
}

// supportedSizes are the edit sizes accepted by the image edit endpoint.
var supportedSizes = map[string]struct{}{
	"256x256":   {},
	"512x512":   {},
	"1024x1024": {},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorefrontDir:  defaultStorefrontDir,
			PublicDir:      defaultPublicDir,
			MasksDir:       defaultMasksDir,
			ProductsFile:   defaultProductsFile,
			DetailsFile:    defaultDetailsFile,
			WorkDir:        defaultWorkDir,
			VariantLog:     defaultVariantLog,
			PreviewDir:     defaultPreviewDir,
			MaskPreviewDir: defaultMaskPreviewDir,
			StateDir:       defaultStateDir,
			LogDir:         defaultLogDir,
		},
		Catalog: Catalog{
			Slugs: append([]string(nil), defaultSlugs...),
		},
		ImageEdit: ImageEdit{
			BaseURL:               defaultImageEditBaseURL,
			Model:                 defaultImageEditModel,
			Size:                  defaultImageEditSize,
			TimeoutSeconds:        defaultImageEditTimeout,
			RequestIntervalMillis: defaultRequestIntervalMillis,
			RetryAttempts:         defaultRetryAttempts,
			RetryBaseDelaySeconds: defaultRetryBaseDelay,
			RetryMaxDelaySeconds:  defaultRetryMaxDelay,
		},
		Pipeline: Pipeline{
			Candidates:     defaultCandidates,
			Workers:        defaultWorkers,
			JPEGQuality:    defaultJPEGQuality,
			RecolorBlend:   defaultRecolorBlend,
			PreviewQuality: defaultPreviewQuality,
			Previews:       true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Review:         true,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
