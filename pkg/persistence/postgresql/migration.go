package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL,
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				variables JSONB,
				metadata JSONB,
				owner VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				trigger_input JSONB,
				logs JSONB NOT NULL DEFAULT '[]',
				waiting_for_node_id VARCHAR(255),
				output JSONB,
				metadata JSONB,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_workflow_id ON executions(workflow_id);
			CREATE INDEX idx_executions_status ON executions(status);

			CREATE TABLE submissions (
				idempotency_key VARCHAR(255) PRIMARY KEY,
				id VARCHAR(255) NOT NULL,
				workflow_id VARCHAR(255) NOT NULL,
				node_id VARCHAR(255) NOT NULL,
				execution_id VARCHAR(255) NOT NULL,
				payload JSONB,
				submitted_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_submissions_execution_id ON submissions(execution_id);
		`,
	}
}
