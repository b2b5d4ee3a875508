// Package matchdex embeds the matchdex search compiler in a Go program.
//
// The client connects to the record store and the Elasticsearch index
// directly, without going through the HTTP API:
//
//	client, _ := matchdex.New(ctx,
//	    matchdex.WithRedis("localhost:6379", ""),
//	    matchdex.WithElasticsearch("http://localhost:9200"),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, matchdex.Filters{
//	    "role":     "babysitter",
//	    "distance": 10,
//	}, matchdex.SearchOptions{Center: &matchdex.Point{Lat: 51.05, Lon: 3.72}})
//
// Large bounded searches return clusters instead of users; check
// Result.Clustered.
package matchdex
