// Package workerproto описывает HTTP-протокол data-plane воркера.
package workerproto

// Форматы путей и имена query-параметров API воркера.
const (
	PagePathFormat = "%s/file/%s/page/%d"
	FilesPath      = "/files"
	InfoPath       = "/info"
	LoadPath       = "/load"
	HealthPath     = "/health"

	ParamPath    = "path"
	ParamOffset  = "offset"
	ParamLength  = "length"
	ParamOpType  = "opType"
	ParamVerify  = "verify"
	ParamVerbose = "verbose"

	ParamPartialListing   = "partialListing"
	ParamBandwidth        = "bandwidth"
	ParamLoadMetadataOnly = "loadMetadataOnly"
	ParamSkipIfExists     = "skipIfExists"
	ParamFileFilterRegx   = "fileFilterRegx"
	ParamProgressFormat   = "progressFormat"
)

// Контент-тайпы ответов.
const (
	ContentTypeText = "text/plain"
	ContentTypeJSON = "application/json"
)

// HealthBody — фиксированное тело ответа /health.
const HealthBody = "worker is active"
