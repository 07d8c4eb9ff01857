package metadata

/**
 * @brief Describes a job to be run by the job system.
 */
type JobTask struct {
	/** @brief Used in log messages. */
	Name string
	/** @brief Invoked when the job starts. Required. */
	OnStart func() error
	/** @brief Invoked when OnStart succeeds. Optional. */
	OnComplete func()
	/** @brief Invoked with the error of a failed OnStart. Optional. */
	OnFailure func(error)
}
