// Package serpintel provides an in-process Go client for the serpintel SERP
// analysis pipeline: fetch a results page, classify search intent, detect
// market gaps and produce prioritized recommendations for graphic tee listings.
//
//	client, _ := serpintel.New(ctx,
//	    serpintel.WithSerpAPI(os.Getenv("SERPAPI_API_KEY")),
//	    serpintel.WithRedisCache("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	res, _ := client.Analyze(ctx, "funny cat shirt")
//	for _, r := range res.Recommendations {
//	    fmt.Println(r.Priority, r.Tactic, r.Description)
//	}
//
// Without WithSerpAPI the client needs WithFixtureProvider, which serves
// deterministic synthetic pages for offline use and tests.
package serpintel
