package model

// SetupModels resolves the generation and judge models. An empty model
// uses the provider default; an empty judge model follows the generation
// model.
func SetupModels(provider, model, judgeModel string) (string, string) {
	if model == "" {
		model = DefaultModel(provider)
	}
	if judgeModel == "" {
		judgeModel = model
	}
	return model, judgeModel
}

// SetupEmbedding resolves the embedding provider and model. An empty
// provider follows the completion provider when that provider serves
// embeddings.
func SetupEmbedding(provider, embeddingProvider, embeddingModel string) (string, string) {
	if embeddingProvider == "" && DefaultEmbeddingModel(provider) != "" {
		embeddingProvider = provider
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel(embeddingProvider)
	}
	return embeddingProvider, embeddingModel
}
