package data

import "math/rand"

// Batch is a minibatch of row indices into a training matrix.
type Batch struct {
	Index []int
}

// Batcher shuffles the rows 0..n-1 with rnd and emits them in consecutive
// batches of batchSize (the last one may be shorter). out is closed when
// every row has been sent. Close the returned done chan to stop early.
func Batcher(n, batchSize int, rnd *rand.Rand, out chan<- Batch) (done chan struct{}) {
	done = make(chan struct{})
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}

	go func() {
		defer close(out)
		perm := rnd.Perm(n)
		for start := 0; start < n; start += batchSize {
			end := min(start+batchSize, n)
			select {
			case <-done:
				return
			case out <- Batch{Index: perm[start:end]}:
			}
		}
	}()
	return done
}
