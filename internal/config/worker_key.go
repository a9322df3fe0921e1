package config

type WorkerKeyStruct struct {
	PersistAttemptsQueue string
	ExportJobsQueue      string
	NotificationsQueue   string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAttemptsQueue: "persist_attempts_queue",
	ExportJobsQueue:      "export_jobs_queue",
	NotificationsQueue:   "notifications_queue",
}
