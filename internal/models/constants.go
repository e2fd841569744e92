package models

const (
	// TopK is the number of sections retrieved per query.
	TopK = 4

	// Temperature is the fixed sampling temperature for answer generation.
	Temperature = 0.4

	// MarkdownExt is the extension of corpus source files.
	MarkdownExt = ".md"
)

var (
	// RAGPromptTemplate is the generation prompt. {context} and {question}
	// are substituted per turn.
	RAGPromptTemplate = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question.
These notes come from documentation and a laboratory diary.
If you don't know the answer, just say that you don't know. Use three sentences maximum and keep the answer concise.

<context>
{context}
</context>

Answer the following question:

{question}`
)
