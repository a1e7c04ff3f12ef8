package config

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/mem"
)

// HostResources captures the host measurements that size batches and concurrency.
type HostResources struct {
	AvailableMemoryBytes uint64
	CPUCount             int
}

// DetectHostResources inspects the current machine. Unknown values are left at zero.
func DetectHostResources() HostResources {
	resources := HostResources{CPUCount: runtime.NumCPU()}
	virtualMemory, memoryError := mem.VirtualMemory()
	if memoryError == nil && virtualMemory != nil {
		resources.AvailableMemoryBytes = virtualMemory.Available
	}
	return resources
}

// OptimalBatchSize spends half of the available memory on batches of files of an
// assumed average size, capped at maximumBatchSize. Zero memory yields the static default.
func OptimalBatchSize(availableMemoryBytes uint64) int {
	if availableMemoryBytes == 0 {
		return defaultBatchSize
	}
	batchSize := int(float64(availableMemoryBytes) * batchMemoryFraction / assumedAverageFileSizeBytes)
	return max(1, min(maximumBatchSize, batchSize))
}

// ConcurrentTaskHint returns the per-batch concurrency hint for cpuCount processors.
func ConcurrentTaskHint(cpuCount int) int {
	if cpuCount <= 0 {
		cpuCount = 1
	}
	return min(maximumConcurrentTasks, cpuCount*concurrentTasksPerCPU)
}
