// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// AnalysisTask represents the data structure for an asynchronous document analysis job.
type AnalysisTask struct {
	DocumentKey string `json:"document_key"` // MinIO 中的对象名
	FileName    string `json:"file_name"`
	UserID      uint   `json:"user_id"`
}
