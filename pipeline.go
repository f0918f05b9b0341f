package ogcsim

import "sync"

// task calls fn on every element of data, split in contiguous chunks run by
// workersCount goroutines. fn gets the element index so results can be
// stored in input order.
func task[T any](workersCount int, data []T, fn func(i int, data T)) {
	dataSize := len(data)
	if workersCount <= 1 || dataSize < 2 {
		for i := range data {
			fn(i, data[i])
		}
		return
	}

	workersCount = min(workersCount, dataSize)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	var wg sync.WaitGroup
	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
