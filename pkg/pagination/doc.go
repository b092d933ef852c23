// Package pagination provides parallel batch fetching of offset/limit listings.
//
// The catalogue API reports the total size of a filtered listing with every
// window, so the first window tells how many more to request. This package
// implements a worker pool that fetches the remaining windows concurrently
// while the GraphQL client paces the requests.
//
// Example usage:
//
//	source := catalogue.NewBooksSource(client)
//	fetcher := pagination.NewBatchFetcher(source, pagination.DefaultConfig())
//	result, err := fetcher.FetchAll(ctx, listing.Query[catalogue.WorkField]{Order: catalogue.DefaultOrder()})
//
// The batch fetcher:
//   - Fetches the first window to learn the total count
//   - Spawns a worker pool (default 4 workers)
//   - Distributes the remaining offsets across workers
//   - Returns items in offset order
//   - Stops on the first worker error and returns the windows fetched so far
package pagination
