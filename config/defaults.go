package config

import "time"

const (
	DefaultPort           = 8000
	DefaultMaxRequestSize = 8 * 1024 * 1024
	DefaultCacheTTL       = 24 * time.Hour
	DefaultDeadlineSkew   = 10 * time.Second
	DefaultStoreTimeout   = 5 * time.Second
	DefaultRetryDelay     = 5 * time.Second
	DefaultMaxAttempts    = 3
	DefaultTimeoutSeconds = 60
)

// defaultConfig is merged into the loaded config. Only zero-valued fields are filled in.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           DefaultPort,
			MaxRequestSize: DefaultMaxRequestSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HealthAnnotator: HealthAnnotatorConfig{
			FlowName:       "wh_acd.ibm_clinical_insights_v1.0_standard_flow",
			TimeoutSeconds: DefaultTimeoutSeconds,
			MaxAttempts:    DefaultMaxAttempts,
			RetryDelay:     DefaultRetryDelay,
			Concepts: []ConceptConfig{
				{Type: "umls.DiseaseOrSyndrome", Description: "Diseases or syndromes"},
				{Type: "umls.SignOrSymptom", Description: "Signs or symptoms"},
				{Type: "umls.PharmacologicSubstance", Description: "Pharmacologic substances"},
				{Type: "umls.TherapeuticOrPreventiveProcedure", Description: "Therapeutic or preventive procedures"},
				{Type: "umls.BodyPartOrganOrOrganComponent", Description: "Body parts, organs or organ components"},
				{Type: "icd10Code", Description: "ICD-10 codes of the matched concepts"},
			},
		},
		Pipeline: PipelineConfig{
			Name: "token-classification",
		},
		RedisCache: RedisCacheConfig{
			TTL:          DefaultCacheTTL,
			Prefix:       "nlp_annotator_api",
			DeadlineSkew: DefaultDeadlineSkew,
			StoreTimeout: DefaultStoreTimeout,
		},
		Metrics: MetricsConfig{
			Namespace: "nlp_annotator_api",
		},
		Tracing: TracingConfig{
			ServiceName: "nlp-annotator-api",
		},
	}
}
