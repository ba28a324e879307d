package agent

import (
	"github.com/hupe1980/cotmesh/internal/util"
)

var decomposerPrompt = util.MustParse("decomposer", `Current iteration: {{.Iteration}}
Original problem: {{.OriginalProblem}}
Current prompt: {{.Prompt}}
{{if .Final}}
THIS IS THE FINAL STEP. PROVIDE THE COMPLETE SOLUTION, NOT QUESTIONS ABOUT WHAT TO IMPLEMENT.
{{end}}
REMEMBER: Your response must be ONLY valid JSON with the structure:
{
  "response": "your text here",
  "isSolution": {{if .Final}}true{{else}}false{{end}}
}

NO text outside the JSON structure.`)

var solverPrompt = util.MustParse("solver", `Sub-prompt from Agent A: {{.Prompt}}

REMEMBER: Your response must be ONLY valid JSON with the structure: {"response": "your answer"}
DO NOT include any explanation text, code blocks, or additional formatting.`)

type promptData struct {
	Iteration       int
	OriginalProblem string
	Prompt          string
	Final           bool
}
