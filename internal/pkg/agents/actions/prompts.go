package actions

const communicateSystem = `%s

Based on the conversation so far, ask the user about any requirement details that are still unclear.
If the requirement is already clear, reply with the single word end and nothing else.
Do not introduce yourself, just ask your question.`

const flowExample = "```mermaid\nflowchart LR\n  A[Hard edge] -->|Link text| B(Round edge)\n  B --> C{Decision}\n  C -->|One| D[Result one]\n  C -->|Two| E[Result two]\n```"

const requirementShape = `Return the requirement list as a JSON array inside a json code block. Each requirement is an object with
the fields "priority", "title" and "description"; a requirement with children adds a "sub_requirements" field
holding the same shape. Descriptions must be detailed and unambiguous, at least fifty words each.`

const analyzePrompt = `Based on our conversation, think step by step and summarize the detailed business flow, covering every case
including edge conditions. Describe the final flow chart with mermaid flowchart syntax, for example:

` + flowExample + `

Then split the flow into concrete features and produce a detailed requirement list. ` + requirementShape

const confirmationAnswerSystem = "%s\n\nHere is the requirement list you wrote, between triple backticks: ```%s```.\n\n" +
	"A colleague has questions about some of these requirements. Answer the colleague based on your conversation so far.\n" +
	"Write the answer itself, do not imitate the chat log and do not state your name."

const confirmationAskSystem = "%s\n\nHere is a requirement list, between triple backticks: ```%s```.\n\n" +
	"Starting from your own responsibilities, look only at %s. Find open questions and missing details in that area\n" +
	"and ask about them. Do not state your name. If you have no questions or want to stop, reply with the single word end."

const confirmationOpener = "Do you have any questions about the requirement list?"

const demandChangeSystem = "%s\n\nHere is the requirement list you summarized before, between triple backticks: ```%s```."

const demandChangePrompt = `I have no more questions. Combine the previous requirement list with every detail we confirmed in our
conversation and work out the new business flow in as much detail as possible. Describe the flow chart with mermaid
flowchart syntax, for example:

` + flowExample + `

Then split the flow into concrete features plus the confirmed details and produce a new requirement list. ` + requirementShape + `

Also describe what changed in the requirement document in a short paragraph focused on the changed items. Wrap that
paragraph in a code block whose language is demand-change, without markdown headings inside it.
Keep the demand-change block and the json block fully separate and complete.`

const uiDesignSystem = "%s\n\nHere is the confirmed requirement change, between triple backticks: ```%s```."

const uiDesignPrompt = `Design the user interface for these requirements from the point of view of %s. Produce one complete,
self-contained HTML page per screen with inline CSS. Wrap every page in its own html code block.`
