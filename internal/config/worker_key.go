package config

type WorkerKeyStruct struct {
	PersistAnswersQueue string
	PersistExamsQueue   string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue: "persist_answers_queue",
	PersistExamsQueue:   "persist_exams_queue",
}
