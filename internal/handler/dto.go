// internal/handler/dto.go
package handler

import (
	"collab-service/internal/model"
)

// UserResponse is the API shape of one present user.
type UserResponse struct {
	ID     string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name   string `json:"name" example:"Jordan Kim"`
	Email  string `json:"email" example:"jordan@example.com"`
	Avatar string `json:"avatar,omitempty"`
} // @name UserResponse

// RoomPresenceResponse lists the users present in one room.
type RoomPresenceResponse struct {
	Room  string         `json:"room" example:"project:550e8400-e29b-41d4-a716-446655440002"`
	Count int            `json:"count" example:"3"`
	Users []UserResponse `json:"users"`
} // @name RoomPresenceResponse

// UserStatusResponse reports one user's presence in one room.
type UserStatusResponse struct {
	UserID string `json:"userId"`
	Room   string `json:"room"`
	Online bool   `json:"online"`
} // @name UserStatusResponse

// RoomStatsResponse reports occupancy per active room.
type RoomStatsResponse struct {
	Rooms map[string]int `json:"rooms"`
	Total int            `json:"total"`
} // @name RoomStatsResponse

// ToUserResponse converts a presence record to its API shape.
func ToUserResponse(u model.PresenceRecord) UserResponse {
	return UserResponse{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}

// ToRoomPresenceResponse converts a room roster to its API shape.
func ToRoomPresenceResponse(room string, users []model.PresenceRecord) RoomPresenceResponse {
	resp := RoomPresenceResponse{
		Room:  room,
		Count: len(users),
		Users: make([]UserResponse, len(users)),
	}
	for i, u := range users {
		resp.Users[i] = ToUserResponse(u)
	}
	return resp
}

// ToRoomStatsResponse converts room occupancy counts to their API shape.
func ToRoomStatsResponse(stats map[string]int) RoomStatsResponse {
	total := 0
	for _, n := range stats {
		total += n
	}
	return RoomStatsResponse{Rooms: stats, Total: total}
}
