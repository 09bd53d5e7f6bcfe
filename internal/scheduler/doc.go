// Package scheduler maintains the registry of recording jobs and fires them.
//
// Jobs come in two kinds (single station, bulk set) and two cadences (once,
// every n minutes). The tick loop scans the registry once a minute; intervals
// of an hour or more align to hour buckets, shorter intervals to minute
// buckets, so firings land near the requested cadence rather than at exact
// elapsed offsets. Registry mutations and the tick scan share one mutex; the
// firings themselves run asynchronously through the batch runner.
package scheduler
