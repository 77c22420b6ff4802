package store

// SQL query constants. PostgresStore methods reference these.

const evaluationColumns = `id, vehicle, valuation, deal_rating, flags, created_at`

const (
	queryInsertEvaluation = `
		INSERT INTO evaluations (
			id, url, maker, model, year, listing_price, valuation_price, rating,
			vehicle, valuation, deal_rating, flags, created_at
		) VALUES (
			@id, @url, @maker, @model, @year, @listing_price, @valuation_price, @rating,
			@vehicle, @valuation, @deal_rating, @flags, @created_at
		)`

	queryGetEvaluation = `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE id = $1`

	queryPruneEvaluations = `
		DELETE FROM evaluations
		WHERE created_at < $1`
)
