// Package bench measures the latency and accuracy of the kernels in package
// power over fixed datasets, and reports the results as a table, as JSON, as
// Prometheus metrics or as an S3 object.
package bench
