/*
Package history models the addressable location of a visitor:
the list of places they have navigated to and where in that list they currently are.

A [Stack] behaves like a browser's session history.
Pushing a location drops any locations ahead of the current one;
moving back and forward only shifts the cursor.

A [Store] persists a Stack per visitor between HTTP requests.
[MemoryStore] keeps them in process and suits development and tests;
[RedisStore] shares them across app instances.
*/
package history
