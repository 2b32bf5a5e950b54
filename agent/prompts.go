package agent

import "strings"

// Default prompt templates. Placeholders use {name} syntax and are filled
// by renderPrompt; custom templates supplied by callers use the same
// placeholders.
const (
	defaultPlannerPrompt = `You are a top-tier AI planning expert. Your task is to decompose complex user problems into an action plan consisting of multiple simple steps.
Make sure each step in the plan is an independent, executable subtask, and strictly follow logical order.
Your output must be a JSON array of strings, where each element describes one subtask (less than 4 subtasks at most).

Question: {question}

Output your plan strictly in the following format:
` + "```json" + `
["Step 1", "Step 2", "Step 3"]
` + "```"

	defaultExecutorPrompt = `You are a top-tier AI execution expert. Your task is to strictly follow the given plan and solve the problem step by step.
You will receive the original problem, the complete plan, and the steps completed so far with their results.
Please focus on solving the "current step" concisely and only output the final answer for that step, without any additional explanations or dialogue.

# Original Question:
{question}

# Complete Plan:
{plan}

# History and Results:
{history}

# Current Step:
{current_step}

Please only output the answer for the "current step":`

	defaultInitialPrompt = `Please complete the following task:

Task: {task}

Provide a complete and accurate answer.`

	defaultReflectPrompt = `Please carefully review the following answer and identify potential issues or areas for improvement:

# Original Task:
{task}

# Current Answer:
{content}

Analyze the quality of this answer, point out any shortcomings, and provide specific suggestions for improvement.
If the answer is already satisfactory, reply with "No improvement needed".`

	defaultRefinePrompt = `Please improve your answer based on the feedback:

# Original Task:
{task}

# Previous Answer:
{last_attempt}

# Feedback:
{feedback}

Provide an improved answer.`
)

// renderPrompt substitutes {key} placeholders. Unknown placeholders in
// the template are left as-is.
func renderPrompt(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
