package nlsql

import (
	"fmt"
	"strings"
)

func buildPrompt(task TaskType, schemaDescription, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	switch task {
	case TaskNLToSQL:
		return fmt.Sprintf(`You are an expert SQL developer. Convert this natural language requirement to an optimized SQL query.

Natural Language Requirement: %s

%s

Requirements:
1. Generate a single SELECT statement against the schema above
2. Use proper JOINs when needed
3. Include appropriate WHERE clauses
4. Use table aliases for readability
5. Return only the SQL query, no explanation

SQL Query:`, prompt, schemaDescription)

	case TaskSyntheticData:
		return fmt.Sprintf(`You are a data generation expert. Analyze this request for synthetic data generation:

Request: %s

Provide a realistic assessment of synthetic data generation including:
- Number of records that could be generated
- Estimated generation time
- Data quality score (0.0 to 1.0)

Respond in this exact JSON format:
{"records_generated": <number>, "generation_time": "<time>", "data_quality_score": <score>}`, prompt)

	case TaskValidation:
		return fmt.Sprintf(`You are a SQL performance expert. Analyze this SQL query for validation:

Query Context: %s

Provide analysis including:
- Whether validation passed (true/false)
- Number of issues found (0-5)
- Performance score (0.0 to 1.0)
- 2-3 specific suggestions for improvement

Respond in this exact JSON format:
{"validation_passed": <boolean>, "issues_found": <number>, "performance_score": <score>, "suggestions": ["suggestion1", "suggestion2"]}`, prompt)

	default:
		return prompt
	}
}

func stripMarkdownSQL(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
