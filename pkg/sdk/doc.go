// Package dupscan finds near-duplicate texts in memory, without a store or a
// report file in between.
//
// Two texts are scored with the Ratcliff/Obershelp ratio, scaled to 0..100.
// Every unordered pair of a document set is compared once on a bounded worker
// pool, and pairs at or above the threshold come back ranked by score.
//
//	d, _ := dupscan.New(dupscan.WithThreshold(80), dupscan.WithWorkers(4))
//	res, err := d.Compare(ctx, []dupscan.Document{
//	    {ID: "1", Text: "the quick brown fox"},
//	    {ID: "2", Text: "the quick brown fox!"},
//	})
//	for _, m := range res.Matches {
//	    fmt.Println(m.Main.ID, m.Similar.ID, m.Score)
//	}
//
// Documents whose Text is not a string are excluded from every pair.
// Results can be saved with WriteReport in xlsx, csv or json form.
package dupscan
