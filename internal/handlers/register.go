package handlers

import "github.com/flyasher/fiora/internal/transport"

// Register wires every realtime event to its handler.
func Register(router *transport.Router, messages *MessageHandler, groups *GroupHandler, uploads *UploadHandler) {
	router.Handle("sendMessage", messages.SendMessage)
	router.Handle("createGroup", groups.CreateGroup)
	router.Handle("getGroupOnlineMembers", groups.GetGroupOnlineMembers)
	router.Handle("changeGroupAvatar", groups.ChangeGroupAvatar)
	router.Handle("getGroupMessages", groups.GetGroupMessages)
	router.Handle("uploadToken", uploads.UploadToken)
}
