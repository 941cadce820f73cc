// Package protocol implements the binary wire protocol shared by the
// server and its clients: a 2-byte big-endian length prefix, a 1-byte
// opcode and an opcode-specific body.
package protocol

// Opcode bytes. REQ is client to server, RES/NOTI is server to client.
const (
	// Authentication (0x00 - 0x0F)
	OpLogin       byte = 0x01 // REQ: nickname (UTF-8 string)
	OpLoginResult byte = 0x02 // RES: result (1B)

	// Room management (0x10 - 0x1F)
	OpSearchRoom       byte = 0x10 // REQ: empty / RES: room listing
	OpCreateRoom       byte = 0x11 // REQ: title (UTF-8 string)
	OpCreateRoomResult byte = 0x12 // RES: result (1B), room id (2B)
	OpJoinRoom         byte = 0x13 // REQ: room id (2B)
	OpJoinRoomResult   byte = 0x14 // RES: result (1B), seat (1B)
	OpEnterNotice      byte = 0x15 // NOTI: seat (1B), nickname (string)
	OpLeaveRoom        byte = 0x16 // REQ: empty
	OpLeaveNotice      byte = 0x17 // NOTI: seat (1B)
	OpRoomInfo         byte = 0x18 // REQ: empty

	// Match state (0x20 - 0x2F)
	OpToggleReady byte = 0x20 // REQ: empty
	OpReadyNotice byte = 0x21 // NOTI: seat (1B), state (1B)
	OpGameStart   byte = 0x22 // NOTI: RNG seed (4B)

	// In-match input (0x30 - 0x3F)
	OpMove       byte = 0x30 // REQ: action (1B)
	OpMoveNotice byte = 0x31 // NOTI: seat (1B), action (1B)

	// Player interaction (0x40 - 0x4F)
	OpAttack        byte = 0x40 // REQ: line count (1B)
	OpGarbageNotice byte = 0x41 // NOTI: attacker (1B), target (1B), lines (1B)

	// Match end (0x90 - 0x9F)
	OpGameOver     byte = 0x90 // REQ: score (4B)
	OpResultNotice byte = 0x91 // NOTI: winner (1B, 255 = none), reason (1B)
)

// JOIN_ROOM_RESULT result codes.
const (
	JoinOK       byte = 0
	JoinNotFound byte = 1
	JoinFull     byte = 2
	JoinInMatch  byte = 3
)

// RESULT_NOTICE fields.
const (
	NoWinner byte = 255

	ReasonNormal   byte = 0
	ReasonWalkover byte = 1
)
