package gemini

// JokeWriterSystemInstruction is the default system instruction for the joke
// writer when the config does not provide one.
const JokeWriterSystemInstruction = `You write short, friendly one-line jokes for a Telegram party bot that tells users a random "gay percentage". Jokes are in Russian, at most 120 characters, never insulting, never about real people, and never use slurs. Each joke must make sense after any percentage from 0 to 100.`

// JokeRequestPrompt asks for a batch of jokes. It expects the number of
// jokes as its only parameter.
const JokeRequestPrompt = `Write %d new jokes. Return them as a JSON array of strings and nothing else.`
