package common

// AccessTokenHeaderName is the HTTP header used to carry the bearer access
// token on API requests.
const AccessTokenHeaderName = "Authorization"

// DefaultChatSendAction is the action tag bound to verification tokens
// requested for the chat send path.
const DefaultChatSendAction = "chat_send"
