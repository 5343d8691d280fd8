// Package command implements the wololo text command language.
//
// The same commands are typed on the command line and published on the
// MQTT command topic:
//
//	add NAME MAC [CHECK_ADDR]   register a device
//	del NAME                    forget a device
//	wake NAME|MAC               send a magic packet
//	show                        list devices (alias: list)
//
// Anything else yields the help text. Execute never returns an error;
// failures are reported in Result.Message with Result.OK set to false.
package command
